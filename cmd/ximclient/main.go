// Command ximclient runs a demonstration XIM client against an
// in-memory server double, the mirror image of cmd/ximserver. Real
// deployments supply their own x11.Conn wired to a live display; this
// binary exists to exercise the client state machine and show what an
// embedder's event loop looks like.
package main

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/go-xim/xim"
	"github.com/go-xim/xim/wire"
	"github.com/go-xim/xim/ximtest"
)

func main() {
	var (
		locale  = pflag.StringP("locale", "l", "C", "Locale to open the session with.")
		verbose = pflag.BoolP("verbose", "v", false, "Enable debug logging.")
	)
	pflag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	clientConn, serverConn := ximtest.NewConnPair(xim.NativeX11ByteOrder())

	clientWindow, err := clientConn.CreateWindow()
	if err != nil {
		logger.Fatal("create client window", "err", err)
	}
	serverWindow, err := serverConn.CreateWindow()
	if err != nil {
		logger.Fatal("create server window", "err", err)
	}

	serverFramer, err := xim.NewFramer(serverConn, serverWindow, clientWindow)
	if err != nil {
		logger.Fatal("new server framer", "err", err)
	}
	clientFramer, err := xim.NewFramer(clientConn, clientWindow, serverWindow)
	if err != nil {
		logger.Fatal("new client framer", "err", err)
	}

	srv := xim.NewServer(serverFramer, xim.NativeByteOrder(), xim.DiscardKeyHandler)
	done := make(chan struct{})
	go func() {
		for {
			if err := srv.Serve(done); err != nil {
				logger.Debug("server loop stopped", "err", err)
				return
			}
		}
	}()

	c := xim.NewClient(clientFramer)
	c.Callbacks.OnForward = func(ic *xim.ClientIC, event [32]byte) {
		logger.Info("event forwarded back unfiltered", "ic", ic.ID)
	}
	c.Callbacks.OnPreeditDraw = func(ic *xim.ClientIC, d wire.PreeditDraw) {
		logger.Info("preedit updated", "ic", ic.ID, "text", d.String.String())
	}

	logger.Info("connecting", "locale", *locale)
	if err := c.Connect(); err != nil {
		logger.Fatal("connect", "err", err)
	}
	if err := c.Open(*locale); err != nil {
		logger.Fatal("open", "err", err)
	}

	ic, err := c.CreateIC(xim.ICAttrValues{
		InputStyle:   wire.StylePreeditNothing | wire.StyleStatusNothing,
		ClientWindow: uint32(clientWindow),
	})
	if err != nil {
		logger.Fatal("create ic", "err", err)
	}
	logger.Info("input context created", "ic", ic.ID)

	if err := c.SetFocus(ic); err != nil {
		logger.Fatal("set focus", "err", err)
	}

	if err := c.ForwardKeyEvent(ic, [32]byte{'a'}, false); err != nil {
		logger.Fatal("forward key event", "err", err)
	}
	if err := c.Dispatch(nil); err != nil {
		logger.Error("dispatch", "err", err)
	}

	if err := c.DestroyIC(ic); err != nil {
		logger.Fatal("destroy ic", "err", err)
	}
	if err := c.Close(); err != nil {
		logger.Fatal("close", "err", err)
	}
	if err := c.Disconnect(); err != nil {
		logger.Fatal("disconnect", "err", err)
	}
	close(done)

	logger.Info("session complete")
}
