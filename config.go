package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"wwwroot-server/docroot"
	httpx "wwwroot-server/http"
)

type options struct {
	httpAddr    string
	root        string
	tftpAddr    string
	nfsAddr     string
	portmapAddr string
}

func parseOptions(args []string, output io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("wwwroot-server", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&o.httpAddr, "http", httpx.DefaultAddr, "HTTP listen address")
	fs.StringVar(&o.root, "root", "", "directory to serve (default: "+docroot.DefaultDir+" next to the executable)")
	// Mirrors of the same root, all off unless given an address.
	fs.StringVar(&o.tftpAddr, "tftp", "", "TFTP listen address, e.g. :69")
	fs.StringVar(&o.nfsAddr, "nfs", "", "NFSv3 listen address, e.g. :2049")
	fs.StringVar(&o.portmapAddr, "portmap", "", "portmapper listen address advertising -nfs, e.g. :111")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %q", fs.Args())
	}
	if o.portmapAddr != "" && o.nfsAddr == "" {
		return options{}, errors.New("-portmap requires -nfs")
	}
	return o, nil
}

// documentRoot returns the absolute directory to serve. A relative -root
// is taken from the working directory at launch.
func (o options) documentRoot() (string, error) {
	if o.root == "" {
		return docroot.Default()
	}
	return filepath.Abs(o.root)
}
