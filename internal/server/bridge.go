package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
	"github.com/devricklin/privacy-guard/internal/biz/usecase"
	"github.com/devricklin/privacy-guard/internal/logging"
	"github.com/devricklin/privacy-guard/internal/service"
)

const (
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxFrameBytes  = 1 << 20
	readBufferSize = 4096
)

// BridgeServer accepts page connections and runs one engine per page
type BridgeServer struct {
	factory  *service.PageFactory
	upgrader websocket.Upgrader
	log      logging.Logger

	server *http.Server
	addr   string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBridgeServer creates a new page bridge
func NewBridgeServer(factory *service.PageFactory, addr string, log logging.Logger) *BridgeServer {
	ctx, cancel := context.WithCancel(context.Background())
	return &BridgeServer{
		factory: factory,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: readBufferSize,
			// Pages connect from the sites they run on
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:    log.With("component", "Bridge"),
		addr:   addr,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Routes returns the bridge router
func (s *BridgeServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/ws", s.handleWS)
	return r
}

// Start starts the HTTP server
func (s *BridgeServer) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.log.Info(s.ctx, "starting page bridge", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop closes every page connection and the listener
func (s *BridgeServer) Stop(ctx context.Context) error {
	s.cancel()
	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}
	s.wg.Wait()
	return err
}

func (s *BridgeServer) handleWS(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client")
	pageURL := r.URL.Query().Get("url")
	if clientID == "" || pageURL == "" {
		http.Error(w, "client and url are required", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "upgrade failed", "error", err)
		return
	}

	s.wg.Add(1)
	defer s.wg.Done()
	s.serveConn(conn, clientID, pageURL)
}

func (s *BridgeServer) serveConn(conn *websocket.Conn, clientID, pageURL string) {
	defer conn.Close()

	presenter := newWSPresenter(conn)
	page, err := s.factory.Open(s.ctx, clientID, pageURL, presenter)
	if err != nil {
		s.log.Warn(s.ctx, "rejected page", "error", err)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			time.Now().Add(writeWait))
		return
	}
	page.Start(s.ctx)
	defer page.Stop()

	connCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	go s.keepAlive(connCtx, conn, presenter)

	conn.SetReadLimit(maxFrameBytes)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn(s.ctx, "page connection lost", "host", page.Host(), "error", err)
			}
			return
		}

		data, err := s.dispatch(page, env)
		if env.Seq == 0 {
			if err != nil {
				s.log.Debug(s.ctx, "message rejected", "type", env.Type, "error", err)
			}
			continue
		}

		ack := Ack{Seq: env.Seq, OK: err == nil, Data: data}
		if err != nil {
			ack.Error = err.Error()
		}
		if err := presenter.ack(ack); err != nil {
			s.log.Warn(s.ctx, "failed to ack", "error", err)
			return
		}
	}
}

// keepAlive pings the page until ctx ends; a missing pong expires the read deadline
func (s *BridgeServer) keepAlive(ctx context.Context, conn *websocket.Conn, presenter *wsPresenter) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Unblocks the read loop on shutdown
			conn.SetReadDeadline(time.Now())
			return
		case <-ticker.C:
			if err := presenter.ping(); err != nil {
				return
			}
		}
	}
}

func (s *BridgeServer) dispatch(page *service.Page, env Envelope) (any, error) {
	switch env.Type {
	case TypeInput:
		var p inputPayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		page.Input(usecase.InputEvent{Target: p.Target, Tag: p.Tag, Value: p.Value})
		return nil, nil

	case TypeCopy:
		var p copyPayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		page.Copy(usecase.CopyEvent{
			ActiveTarget:     p.ActiveTarget,
			ActiveIsPassword: p.ActiveIsPassword,
			Clipboard:        p.Clipboard,
			Selection:        p.Selection,
		})
		return nil, nil

	case TypeSnapshot:
		var p snapshotPayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		page.Snapshot(p.HTML)
		return nil, nil

	case TypePointerEnter, TypePointerLeave, TypeAccept, TypeOmit, TypeExamples, TypeMask:
		var p notificationPayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		return s.notificationAction(page, env.Type, p.ID)

	case TypeClick:
		var p clickPayload
		if err := decodePayload(env, &p); err != nil {
			return nil, err
		}
		return map[string]bool{"logout": page.Click(domain.LogoutClick{Href: p.Href, Text: p.Text})}, nil

	case TypeBannerClear:
		ack := page.ClearData()
		if !ack.OK {
			return nil, errors.New(ack.Error)
		}
		return nil, nil

	case TypeBannerDismiss:
		page.DismissBanner()
		return nil, nil
	}
	return nil, fmt.Errorf("unknown message type %q", env.Type)
}

func (s *BridgeServer) notificationAction(page *service.Page, typ, id string) (any, error) {
	switch typ {
	case TypePointerEnter:
		page.PointerEnter(id)
	case TypePointerLeave:
		page.PointerLeave(id)
	case TypeAccept:
		return nil, page.Accept(id)
	case TypeOmit:
		return nil, page.Omit(id)
	case TypeExamples:
		examples, err := page.Examples(id)
		if err != nil {
			return nil, err
		}
		return map[string][]string{"examples": examples}, nil
	case TypeMask:
		value, err := page.Mask(id)
		if err != nil {
			return nil, err
		}
		return map[string]string{"value": value}, nil
	}
	return nil, nil
}

func decodePayload(env Envelope, dst any) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("%s: missing payload", env.Type)
	}
	if err := json.Unmarshal(env.Payload, dst); err != nil {
		return fmt.Errorf("%s: decode payload: %w", env.Type, err)
	}
	return nil
}
