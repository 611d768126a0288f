// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command reactor-echo is an example program exercising code.hybscloud.com/reactor
// with the default (echo-nothing) handler. Its handler logic is not part
// of the core's tested surface; see §1's "example programs" non-goal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"code.hybscloud.com/reactor"
)

var log = logrus.New()

func main() {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "reactor-echo",
		Short: "Run a reactor server with the default request handler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), host, port)
		},
	}
	cmd.Flags().StringVarP(&host, "host", "s", "0.0.0.0", "listen address")
	cmd.Flags().IntVarP(&port, "port", "p", 9000, "listen port")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cmd.ExecuteContext(ctx); err != nil {
		log.WithError(err).Fatal("reactor-echo exited with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, host string, port int) error {
	srv := reactor.NewServer(reactor.Events{
		OnInit: func(*reactor.Server) bool {
			log.Info("starting reactor server")
			return true
		},
		OnEnd: func(*reactor.Server) {
			log.Info("reactor server stopped")
		},
		OnConnected: func(h int, peerIP string) bool {
			log.WithFields(logrus.Fields{"handle": h, "peer": peerIP}).Info("connection accepted")
			return true
		},
		OnPeerClosed: func(h int) {
			log.WithField("handle", h).Debug("peer closed")
		},
		OnPeerReset: func(h int) {
			log.WithField("handle", h).Debug("peer reset")
		},
	}, reactor.WithListenAddress(host), reactor.WithLogger(log))

	return srv.Start(ctx, port)
}
