// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package requester

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/rpc/v2/json2"
)

type EndpointRequester struct {
	cli  *http.Client
	uri  string
	base string
}

// New returns a requester that calls methods of service [base] at [uri].
func New(uri string, base string) *EndpointRequester {
	return &EndpointRequester{
		cli:  http.DefaultClient,
		uri:  uri,
		base: base,
	}
}

func (e *EndpointRequester) SendRequest(
	ctx context.Context,
	method string,
	params interface{},
	reply interface{},
) error {
	uri, err := url.Parse(e.uri)
	if err != nil {
		return err
	}
	return SendJSONRequest(
		ctx,
		e.cli,
		uri,
		fmt.Sprintf("%s.%s", e.base, method),
		params,
		reply,
	)
}

func SendJSONRequest(
	ctx context.Context,
	cli *http.Client,
	uri *url.URL,
	method string,
	params interface{},
	reply interface{},
) error {
	requestBodyBytes, err := json2.EncodeClientRequest(method, params)
	if err != nil {
		return fmt.Errorf("failed to encode client params: %w", err)
	}

	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		uri.String(),
		bytes.NewBuffer(requestBodyBytes),
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := cli.Do(request)
	if err != nil {
		return fmt.Errorf("failed to issue request: %w", err)
	}
	defer resp.Body.Close()

	// Return an error for any non successful status code
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("received status code: %d", resp.StatusCode)
	}

	if err := json2.DecodeClientResponse(resp.Body, reply); err != nil {
		return fmt.Errorf("failed to decode client response: %w", err)
	}
	return nil
}
