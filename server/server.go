// Package server exposes a fluid generator over gRPC for processes that do
// not hold their own instance-id lease.
package server

import (
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"google.golang.org/grpc"

	"github.com/cnwinds/fluid/api"
	"github.com/cnwinds/fluid/fluid"
	"github.com/cnwinds/fluid/lease"
)

const DefaultMaxBatch = 10000

type Config struct {
	ListenAddress string

	// Source yields the server's instance id, leased at startup and
	// released by Stop.
	Source lease.Source

	// Generator tunes the bit layout; the zero value selects the defaults.
	Generator fluid.Config

	// MaxBatch bounds the id count of a single Fetch.
	MaxBatch int

	Logger logrus.FieldLogger
}

type Server struct {
	cfg        *Config
	gen        *fluid.Generator
	source     lease.Source
	listen     net.Listener
	grpcServer *grpc.Server
	log        logrus.FieldLogger
}

func (s *Server) Fetch(ctx context.Context, in *api.FetchRequest) (*api.FetchReply, error) {
	need := int(in.NeedCount)
	if need <= 0 {
		return nil, fmt.Errorf("need_count %d must be positive", in.NeedCount)
	}
	if need > s.cfg.MaxBatch {
		need = s.cfg.MaxBatch
	}

	result := &api.FetchReply{Ids: make([]int64, need)}
	for i := 0; i < need; i++ {
		result.Ids[i] = s.gen.CreateId()
	}
	return result, nil
}

// StartServer leases an instance id, builds the generator and begins serving.
// It returns once the listener is up; use Stop for an orderly shutdown.
func StartServer(cfg *Config) (*Server, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("server: no instance id source configured")
	}
	if cfg.MaxBatch == 0 {
		cfg.MaxBatch = DefaultMaxBatch
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	svr := &Server{cfg: cfg, source: cfg.Source, log: cfg.Logger}

	instanceID, err := cfg.Source.Acquire(context.Background())
	if err != nil {
		return nil, err
	}

	svr.gen, err = fluid.NewWithConfig(instanceID, cfg.Generator)
	if err != nil {
		if rerr := cfg.Source.Release(context.Background()); rerr != nil {
			svr.log.WithError(rerr).Warn("lease release after failed startup")
		}
		return nil, err
	}

	svr.listen, err = net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		if rerr := cfg.Source.Release(context.Background()); rerr != nil {
			svr.log.WithError(rerr).Warn("lease release after failed startup")
		}
		return nil, err
	}
	svr.log.WithFields(logrus.Fields{
		"listen":     svr.listen.Addr().String(),
		"instanceid": instanceID,
	}).Info("fluid server listening")

	svr.grpcServer = grpc.NewServer()
	api.RegisterFluidServer(svr.grpcServer, svr)
	go svr.grpcServer.Serve(svr.listen)

	return svr, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() net.Addr {
	return s.listen.Addr()
}

// Stop drains the grpc server and releases the instance id lease. A failed
// release only orphans the lease; it is logged, not returned.
func (s *Server) Stop() {
	s.grpcServer.GracefulStop()
	if err := s.source.Release(context.Background()); err != nil {
		s.log.WithError(err).Warn("lease release failed on shutdown")
	}
}
