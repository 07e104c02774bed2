package rpcclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	jsonrpc "github.com/catalogfi/barter/daemon/rpc"
	"github.com/catalogfi/barter/daemon/types"
)

type client struct {
	User      string
	Pass      string
	Protocol  string
	RPCServer string
}

type Client interface {
	CreateSwap(data types.RequestCreate) (json.RawMessage, error)
	ExecuteSwap(data types.RequestExecute) (json.RawMessage, error)
	CancelSwap(data types.RequestCancel) (json.RawMessage, error)
	GetSwap(data types.RequestGet) (json.RawMessage, error)
	ListSwaps(data types.RequestList) (json.RawMessage, error)
	SendPostRequest(method string, jsonData []byte) (json.RawMessage, error)
}

func NewClient(userName string, password string, protocol string, rpcServer string) Client {
	return &client{
		User:      userName,
		Pass:      password,
		Protocol:  protocol,
		RPCServer: rpcServer,
	}
}

// SendPostRequest sends the marshalled JSON-RPC command using HTTP-POST mode
// to the configured server and returns either the result field or the error
// field of the response.
func (c *client) SendPostRequest(method string, jsonData []byte) (json.RawMessage, error) {
	payload := jsonrpc.Request{
		Version: "2.0",
		Method:  method,
		Params:  json.RawMessage(jsonData),
	}
	marshalledJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := c.Protocol + "://" + c.RPCServer
	httpRequest, err := http.NewRequest("POST", url, bytes.NewReader(marshalledJSON))
	if err != nil {
		return nil, err
	}
	httpRequest.Close = true
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.SetBasicAuth(c.User, c.Pass)

	httpResponse, err := http.DefaultClient.Do(httpRequest)
	if err != nil {
		return nil, err
	}

	respBytes, err := io.ReadAll(httpResponse.Body)
	httpResponse.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("error reading json reply: %v", err)
	}

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode >= 300 {
		if len(respBytes) == 0 {
			return nil, fmt.Errorf("%d %s", httpResponse.StatusCode,
				http.StatusText(httpResponse.StatusCode))
		}
	}

	var resp jsonrpc.Response
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%s: %s", resp.Error.Message, resp.Error.Data)
	}
	return resp.Result, nil
}

func (c *client) CreateSwap(data types.RequestCreate) (json.RawMessage, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return c.SendPostRequest("createSwap", jsonData)
}

func (c *client) ExecuteSwap(data types.RequestExecute) (json.RawMessage, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return c.SendPostRequest("executeSwap", jsonData)
}

func (c *client) CancelSwap(data types.RequestCancel) (json.RawMessage, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return c.SendPostRequest("cancelSwap", jsonData)
}

func (c *client) GetSwap(data types.RequestGet) (json.RawMessage, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return c.SendPostRequest("getSwap", jsonData)
}

func (c *client) ListSwaps(data types.RequestList) (json.RawMessage, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return c.SendPostRequest("listSwaps", jsonData)
}
