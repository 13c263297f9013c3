package client

import (
	"strings"

	"github.com/hanfei1991/dataservice/model"
	"github.com/hanfei1991/dataservice/pkg/errors"
)

const protocolSeparator = "://"

// ParseService splits a service string of the form "[protocol://]address".
// A service without a protocol gets defaultProtocol.
func ParseService(service string, defaultProtocol string) (model.ServiceEndpoint, error) {
	if service == "" {
		return model.ServiceEndpoint{}, errors.ErrInvalidServiceAddress.GenWithStackByArgs(service, "service must not be empty")
	}
	parts := strings.Split(service, protocolSeparator)
	switch len(parts) {
	case 1:
		return NewServiceEndpoint(defaultProtocol, service)
	case 2:
		if parts[0] == "" {
			return model.ServiceEndpoint{}, errors.ErrInvalidServiceAddress.GenWithStackByArgs(service, "protocol must not be empty")
		}
		return NewServiceEndpoint(parts[0], parts[1])
	default:
		return model.ServiceEndpoint{}, errors.ErrInvalidServiceAddress.GenWithStackByArgs(
			service, "expected at most one '://' separating protocol and address")
	}
}

// NewServiceEndpoint builds an endpoint from an already split pair.
func NewServiceEndpoint(protocol, address string) (model.ServiceEndpoint, error) {
	if protocol == "" {
		return model.ServiceEndpoint{}, errors.ErrInvalidServiceAddress.GenWithStackByArgs(address, "protocol must not be empty")
	}
	if address == "" {
		return model.ServiceEndpoint{}, errors.ErrInvalidServiceAddress.GenWithStackByArgs(
			protocol+protocolSeparator, "address must not be empty")
	}
	return model.ServiceEndpoint{Protocol: protocol, Address: address}, nil
}
