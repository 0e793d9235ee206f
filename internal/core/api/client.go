package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/strbounds/internal/core/auth"
)

// Client calls a FilterAPI server, attaching an API key to every call.
type Client struct {
	cc     grpc.ClientConnInterface
	apiKey string
}

// NewClient returns a client over cc. An empty apiKey sends no key.
func NewClient(cc grpc.ClientConnInterface, apiKey string) *Client {
	return &Client{cc: cc, apiKey: apiKey}
}

func (c *Client) Filter(ctx context.Context, req FilterRequest) (FilterResponse, error) {
	var resp FilterResponse
	err := c.invoke(ctx, "Filter", req, &resp)
	return resp, err
}

func (c *Client) CreateRuleSet(ctx context.Context, req CreateRuleSetRequest) (RuleSetInfo, error) {
	var resp RuleSetInfo
	err := c.invoke(ctx, "CreateRuleSet", req, &resp)
	return resp, err
}

func (c *Client) ListRuleSets(ctx context.Context, req ListRuleSetsRequest) (ListRuleSetsResponse, error) {
	var resp ListRuleSetsResponse
	err := c.invoke(ctx, "ListRuleSets", req, &resp)
	return resp, err
}

func (c *Client) DeleteRuleSet(ctx context.Context, req DeleteRuleSetRequest) (DeleteRuleSetResponse, error) {
	var resp DeleteRuleSetResponse
	err := c.invoke(ctx, "DeleteRuleSet", req, &resp)
	return resp, err
}

func (c *Client) invoke(ctx context.Context, method string, req, resp interface{}) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, auth.MetadataKey, c.apiKey)
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		return err
	}
	return fromStruct(out, resp)
}
