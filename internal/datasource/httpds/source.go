package httpds

import (
	"context"
	"io"
)

// Source adapts a Client and URL to the datasource.Source contract, so the
// fetch stage can treat HTTP downloads and local files uniformly.
type Source struct {
	client *Client
	url    string
}

// NewSource returns a Source that opens url through client.
func NewSource(client *Client, url string) *Source {
	return &Source{client: client, url: url}
}

// Open issues the GET and hands back the response body.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
