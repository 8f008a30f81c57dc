package core

import (
	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
)

// SearchResultMUS serializes SearchResult in the MUS binary format.
// The encoding is three length-prefixed strings in field order.
var SearchResultMUS = searchResultMUS{}

// SearchResultListMUS serializes a slice of SearchResult.
var SearchResultListMUS = ord.NewSliceSer[SearchResult](SearchResultMUS)

type searchResultMUS struct{}

var _ mus.Serializer[SearchResult] = searchResultMUS{}

func (searchResultMUS) Marshal(v SearchResult, bs []byte) (n int) {
	n = ord.String.Marshal(v.Title, bs)
	n += ord.String.Marshal(v.Content, bs[n:])
	n += ord.String.Marshal(v.URL, bs[n:])
	return
}

func (searchResultMUS) Unmarshal(bs []byte) (v SearchResult, n int, err error) {
	v.Title, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.URL, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (searchResultMUS) Size(v SearchResult) (size int) {
	size = ord.String.Size(v.Title)
	size += ord.String.Size(v.Content)
	size += ord.String.Size(v.URL)
	return
}

func (searchResultMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	return
}
