package model

import "fmt"

// DefaultProtocol is the transport protocol used when a service address
// does not name one. Callers may configure another default.
const DefaultProtocol = "grpc"

// ServiceEndpoint is where the dispatcher of a data service listens.
type ServiceEndpoint struct {
	Protocol string `json:"protocol"`
	Address  string `json:"address"`
}

func (e ServiceEndpoint) String() string {
	return fmt.Sprintf("%s://%s", e.Protocol, e.Address)
}
