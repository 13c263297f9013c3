package client

import (
	"fmt"

	"github.com/hanfei1991/dataservice/pb"
)

type CmdType uint16

const (
	CmdRegisterDataset CmdType = 1 + iota
	CmdGetOrCreateJob
	CmdListTasks
	CmdReleaseJobClient
)

func (c CmdType) String() string {
	switch c {
	case CmdRegisterDataset:
		return "RegisterDataset"
	case CmdGetOrCreateJob:
		return "GetOrCreateJob"
	case CmdListTasks:
		return "ListTasks"
	case CmdReleaseJobClient:
		return "ReleaseJobClient"
	default:
		return fmt.Sprintf("CmdType(%d)", uint16(c))
	}
}

type Request struct {
	Cmd CmdType
	Req interface{}
}

func (r *Request) RegisterDataset() *pb.RegisterDatasetRequest {
	return r.Req.(*pb.RegisterDatasetRequest)
}

func (r *Request) GetOrCreateJob() *pb.GetOrCreateJobRequest {
	return r.Req.(*pb.GetOrCreateJobRequest)
}

func (r *Request) ListTasks() *pb.ListTasksRequest {
	return r.Req.(*pb.ListTasksRequest)
}

func (r *Request) ReleaseJobClient() *pb.ReleaseJobClientRequest {
	return r.Req.(*pb.ReleaseJobClientRequest)
}

type Response struct {
	Resp interface{}
}
