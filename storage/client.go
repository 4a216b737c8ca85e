// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

// Package storage contains a client for the measurement storage
// server.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/net/context/ctxhttp"

	"github.com/nick29581/rustc-perf/compare"
)

// A Client issues comparison queries against a storage server.
type Client struct {
	// BaseURL is the base URL of the storage server.
	BaseURL string
	// HTTPClient is the HTTP client for sending requests. If nil,
	// http.DefaultClient will be used.
	HTTPClient *http.Client
}

// Compare fetches the comparison document for the two revisions on
// one metric. An empty stat requests the server's default metric.
func (c *Client) Compare(ctx context.Context, start, end, stat string) (*compare.Document, error) {
	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}

	v := url.Values{"start": []string{start}, "end": []string{end}}
	if stat != "" {
		v.Set("stat", stat)
	}
	u := c.BaseURL + "/perf/get?" + v.Encode()

	resp, err := ctxhttp.Get(ctx, hc, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%s: %s", resp.Status, body)
	}

	doc := &compare.Document{}
	if err := json.NewDecoder(resp.Body).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding comparison document: %v", err)
	}
	return doc, nil
}
