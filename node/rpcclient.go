// Copyright (c) 2026 The gochain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// RPCCall performs one JSON-RPC 2.0 request against a node's RPC server and
// returns the raw result.  It is used by the command-line front-end to talk
// to a running node.
func RPCCall(addr, method string, params interface{}) (json.RawMessage, error) {
	conn, err := net.DialTimeout("tcp", addr, rpcConnTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC server at %v: %w",
			addr, err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(rpcConnTimeout))

	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	req := rpcRequest{
		Jsonrpc: "2.0",
		Method:  method,
		Params:  rawParams,
		ID:      json.RawMessage("1"),
	}
	payload, err := json.Marshal(&req)
	if err != nil {
		return nil, err
	}
	payload = append(payload, '\n')
	if _, err := conn.Write(payload); err != nil {
		return nil, err
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, err
	}

	var resp struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("RPC error %d: %s", resp.Error.Code,
			resp.Error.Message)
	}

	return resp.Result, nil
}
