package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"

	"github.com/cnwinds/fluid/fluid"
	"github.com/cnwinds/fluid/lease"
	"github.com/cnwinds/fluid/server"
)

func main() {

	app := &cli.App{
		Name: "fluid",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Value: "127.0.0.1:10001",
				Usage: "listen address:port",
			},
			&cli.StringFlag{
				Name:  "store",
				Value: "etcd",
				Usage: "lease store backend: etcd, bolt or memory",
			},
			&cli.StringFlag{
				Name:  "etcdkeyprefix",
				Value: "/fluid",
				Usage: "etcd key path prefix",
			},
			&cli.StringSliceFlag{
				Name:  "etcdhosts",
				Value: cli.NewStringSlice("http://127.0.0.1:32379"),
				Usage: "etcd hosts",
			},
			&cli.StringFlag{
				Name:  "boltpath",
				Value: "fluid-leases.db",
				Usage: "bolt store file path",
			},
			&cli.StringFlag{
				Name:  "app",
				Value: "fluid",
				Usage: "application name recorded in lease metadata",
			},
			&cli.IntFlag{
				Name:  "instanceid",
				Value: -1,
				Usage: "static instance id, bypasses the lease store",
			},
			&cli.UintFlag{
				Name:  "maxinstanceid",
				Value: fluid.DefaultMaxInstanceID,
				Usage: "largest leasable instance id",
			},
			&cli.UintFlag{
				Name:  "timestampbits",
				Value: fluid.DefaultTimestampBits,
				Usage: "identifier bits spent on the timestamp",
			},
			&cli.UintFlag{
				Name:  "randombits",
				Value: fluid.DefaultInitialRandomBits,
				Usage: "random bits mixed in per millisecond",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func run(c *cli.Context) error {
	maxID := uint32(c.Uint("maxinstanceid"))
	gencfg := fluid.Config{
		TimestampBits:     uint(c.Uint("timestampbits")),
		InitialRandomBits: uint(c.Uint("randombits")),
		MaxInstanceID:     maxID,
	}

	source, err := buildSource(c, maxID)
	if err != nil {
		return err
	}

	svr, err := server.StartServer(&server.Config{
		ListenAddress: c.String("listen"),
		Source:        source,
		Generator:     gencfg,
		Logger:        logrus.StandardLogger(),
	})
	if err != nil {
		return err
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	logrus.WithField("signal", sig.String()).Info("shutting down")
	svr.Stop()
	return nil
}

func buildSource(c *cli.Context, maxID uint32) (lease.Source, error) {
	if id := c.Int("instanceid"); id >= 0 {
		return lease.Static(uint32(id)), nil
	}

	var store lease.Store
	var err error
	switch backend := c.String("store"); backend {
	case "etcd":
		store, err = lease.NewEtcdStore(&lease.EtcdConfig{
			Endpoints: c.StringSlice("etcdhosts"),
			Prefix:    c.String("etcdkeyprefix"),
		})
	case "bolt":
		store, err = lease.NewBoltStore(c.String("boltpath"))
	case "memory":
		store = lease.NewMemoryStore()
	default:
		err = fmt.Errorf("unknown store backend %q", backend)
	}
	if err != nil {
		return nil, err
	}

	return lease.NewManager(lease.Config{
		Store:  store,
		App:    c.String("app"),
		MaxID:  maxID,
		Logger: logrus.StandardLogger(),
	})
}
