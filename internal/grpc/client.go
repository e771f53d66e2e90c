package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls the Dashboard service over an established connection
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) GetClock(ctx context.Context, country string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Dashboard_GetClock_FullMethodName, wrapperspb.String(country), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCollection(ctx context.Context, name string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Dashboard_ListCollection_FullMethodName, wrapperspb.String(name), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ListClocks returns the registered countries in display order
func (c *Client) ListClocks(ctx context.Context, opts ...grpc.CallOption) ([]string, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, Dashboard_ListClocks_FullMethodName, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	countries := make([]string, 0, len(out.GetValues()))
	for _, v := range out.GetValues() {
		countries = append(countries, v.GetStringValue())
	}
	return countries, nil
}
