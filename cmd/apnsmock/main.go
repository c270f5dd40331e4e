package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	stats_api "github.com/fukata/golang-stats-api-handler"
	"github.com/kayac/pushflow"
	"github.com/kayac/pushflow/mock"
	"github.com/lestrrat-go/server-starter/listener"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/netutil"
)

func main() {
	var (
		port           int
		certFile       string
		keyFile        string
		maxConnections int
		verbose        bool
		logFormat      string
		logLevel       string
	)

	flag.IntVar(&port, "port", 2195, "apns mock server port")
	flag.StringVar(&certFile, "cert-file", "", "apns mock server cert file")
	flag.StringVar(&keyFile, "key-file", "", "apns mock server key file")
	flag.IntVar(&maxConnections, "max-connections", 1000, "maximum number of simultaneous connections")
	flag.BoolVar(&verbose, "verbose", false, "verbose flag")
	flag.StringVar(&logFormat, "log-format", "", "specifies the log format: ltsv or json.")
	flag.StringVar(&logLevel, "log-level", "info", "set the log level (debug, warn, info)")
	flag.Parse()

	if err := pushflow.InitLogrus(logFormat, logLevel); err != nil {
		logrus.Fatal(err)
	}
	logf := logrus.Fields{"type": "apnsmock"}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		pushflow.LogWithFields(logf).Fatalf("failed to load key pair: %s", err)
	}

	lis, err := listen(port)
	if err != nil {
		pushflow.LogWithFields(logf).Fatal(err)
	}

	mux := mock.APNsMockServer(verbose)
	mux.HandleFunc("/stats/profile", stats_api.Handler)

	srv := &http.Server{
		Handler:   mux,
		TLSConfig: &tls.Config{Certificates: []tls.Certificate{cert}},
	}
	if err := http2.ConfigureServer(srv, nil); err != nil {
		pushflow.LogWithFields(logf).Fatal(err)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGINT)
		s := <-sigChan
		pushflow.LogWithFields(logrus.Fields{"type": "apnsmock"}).Infof("received %s signal. Stopping server now...", s)
		srv.Shutdown(context.Background())
	}()

	pushflow.LogWithFields(logrus.Fields{"type": "apnsmock"}).Infof("Starts apnsmock on %s ...", lis.Addr())
	tlsLis := tls.NewListener(netutil.LimitListener(lis, maxConnections), srv.TLSConfig)
	if err := srv.Serve(tlsLis); err != nil && err != http.ErrServerClosed {
		pushflow.LogWithFields(logrus.Fields{"type": "apnsmock"}).Error(err)
		os.Exit(1)
	}
}

func listen(port int) (net.Listener, error) {
	listeners, err := listener.ListenAll()
	if err == listener.ErrNoListeningTarget {
		// Fallback if not running under ServerStarter
		return net.Listen("tcp", fmt.Sprintf(":%d", port))
	}
	if err != nil {
		return nil, err
	}
	return listeners[0], nil
}
