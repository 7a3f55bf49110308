package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"wwwroot-server/docroot"
	httpx "wwwroot-server/http"
	"wwwroot-server/nfs"
	"wwwroot-server/tftp"
	"wwwroot-server/utils"
)

type server interface {
	Serve() error
	Close() error
}

func newLogger(prefix string) *log.Logger {
	return log.New(os.Stdout, prefix, log.LstdFlags)
}

// run starts every configured server and blocks until ctx is done or one
// of them fails. Listeners are closed on return; connections are not drained.
// The startup line goes to logger.
func run(ctx context.Context, opts options, logger *log.Logger) error {
	rootPath, err := opts.documentRoot()
	if err != nil {
		return err
	}
	root, err := docroot.Open(rootPath)
	if err != nil {
		return err
	}

	var servers []server
	closeAll := func() {
		for _, s := range servers {
			s.Close()
		}
	}

	httpSrv, err := httpx.Listen(opts.httpAddr, root, newLogger("http "))
	if err != nil {
		return err
	}
	servers = append(servers, httpSrv)
	port, err := utils.PortOf(httpSrv.Addr().String())
	if err != nil {
		closeAll()
		return err
	}
	logger.Printf("Serving from %s at port %d", rootPath, port)

	if opts.tftpAddr != "" {
		tftpSrv, err := tftp.Listen(opts.tftpAddr, root, newLogger("tftp "))
		if err != nil {
			closeAll()
			return err
		}
		servers = append(servers, tftpSrv)
	}

	if opts.nfsAddr != "" {
		nfsSrv, err := nfs.Listen(opts.nfsAddr, root, newLogger("nfs "))
		if err != nil {
			closeAll()
			return err
		}
		servers = append(servers, nfsSrv)

		if opts.portmapAddr != "" {
			nfsPort, err := utils.PortOf(nfsSrv.Addr().String())
			if err != nil {
				closeAll()
				return err
			}
			pm, err := nfs.ListenPortmap(opts.portmapAddr, nfsPort, newLogger("portmap "))
			if err != nil {
				closeAll()
				return err
			}
			servers = append(servers, pm)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		g.Go(s.Serve)
	}
	g.Go(func() error {
		<-ctx.Done()
		closeAll()
		return nil
	})
	return g.Wait()
}

func main() {
	opts, err := parseOptions(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Printf("%v", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, opts, log.Default()); err != nil {
		log.Fatalf("serve failure: %v", err)
	}
	log.Printf("received signal, exiting")
}
