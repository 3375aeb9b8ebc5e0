package api

import (
	"errors"
	"net/http"

	"github.com/krehermann/exprvm/compiler"
	"github.com/krehermann/exprvm/store"
	"github.com/krehermann/exprvm/types"
	"github.com/krehermann/exprvm/vm"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// DefaultBodyLimit caps request bodies when ServerConfig.BodyLimit is empty.
const DefaultBodyLimit = "64K"

type ServerConfig struct {
	ListenerAddr string
	Logger       *zap.Logger
	// MaxStack is passed to every vm the server runs, 0 for no cap
	MaxStack int
	// BodyLimit is an echo size string such as "64K"
	BodyLimit string
}

type Server struct {
	ServerConfig
	programs *store.ProgramStore
	echo     *echo.Echo

	logger *zap.Logger
}

type exprRequest struct {
	Expr string `json:"expr"`
}

type runResponse struct {
	Result any   `json:"result"`
	Stack  []any `json:"stack"`
}

type compileResponse struct {
	Hash    string   `json:"hash"`
	Program []string `json:"program"`
}

func NewServer(config ServerConfig, programs *store.ProgramStore) (*Server, error) {
	if config.Logger == nil {
		config.Logger, _ = zap.NewDevelopment()
	}
	if config.BodyLimit == "" {
		config.BodyLimit = DefaultBodyLimit
	}
	s := &Server{
		ServerConfig: config,
		programs:     programs,
		logger:       config.Logger.Named("api"),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.BodyLimit(config.BodyLimit))
	e.POST("/eval", s.handleEval)
	e.POST("/compile", s.handleCompile)
	e.GET("/program/:hash", s.handleGetProgram)
	e.POST("/program/:hash/run", s.handleRunProgram)
	s.echo = e

	return s, nil
}

func (s *Server) Start() error {
	s.logger.Info("api server starting",
		zap.String("addr", s.ListenerAddr))
	return s.echo.Start(s.ListenerAddr)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func errorJSON(ectx echo.Context, code int, err error) error {
	return ectx.JSON(code,
		map[string]any{
			"error": err.Error(),
		})
}

func (s *Server) compileRequest(ectx echo.Context) (vm.Program, error) {
	var req exprRequest
	if err := ectx.Bind(&req); err != nil {
		return nil, err
	}
	return compiler.CompileString(req.Expr)
}

func (s *Server) handleEval(ectx echo.Context) error {
	p, err := s.compileRequest(ectx)
	if err != nil {
		return errorJSON(ectx, http.StatusBadRequest, err)
	}
	return s.run(ectx, p)
}

func (s *Server) handleCompile(ectx echo.Context) error {
	p, err := s.compileRequest(ectx)
	if err != nil {
		return errorJSON(ectx, http.StatusBadRequest, err)
	}

	h, err := s.programs.Add(p)
	if err != nil {
		return errorJSON(ectx, http.StatusInternalServerError, err)
	}
	s.logger.Debug("compiled program",
		zap.String("hash", h.Prefix()),
		zap.Int("len", len(p)))

	return ectx.JSON(http.StatusOK, compileResponse{
		Hash:    h.String(),
		Program: p.Mnemonics(),
	})
}

func (s *Server) lookup(ectx echo.Context) (types.Hash, vm.Program, int, error) {
	h, err := types.HashFromHex(ectx.Param("hash"))
	if err != nil {
		return h, nil, http.StatusBadRequest, err
	}
	p, err := s.programs.Get(h)
	if err != nil {
		return h, nil, http.StatusNotFound, err
	}
	return h, p, http.StatusOK, nil
}

func (s *Server) handleGetProgram(ectx echo.Context) error {
	h, p, code, err := s.lookup(ectx)
	if err != nil {
		return errorJSON(ectx, code, err)
	}
	return ectx.JSON(http.StatusOK, compileResponse{
		Hash:    h.String(),
		Program: p.Mnemonics(),
	})
}

func (s *Server) handleRunProgram(ectx echo.Context) error {
	_, p, code, err := s.lookup(ectx)
	if err != nil {
		return errorJSON(ectx, code, err)
	}
	return s.run(ectx, p)
}

// run executes p on a fresh vm and writes the top of the stack.
func (s *Server) run(ectx echo.Context, p vm.Program) error {
	opts := []vm.VMOpt{vm.LoggerOpt(s.logger)}
	if s.MaxStack > 0 {
		opts = append(opts, vm.MaxStackOpt(s.MaxStack))
	}
	machine := vm.NewVM(p, opts...)
	if err := machine.Run(); err != nil {
		s.logger.Info("vm failed", zap.Error(err))
		return errorJSON(ectx, http.StatusUnprocessableEntity, err)
	}

	top, err := machine.Stack.Peek()
	if err != nil && !errors.Is(err, vm.ErrOutOfBounds) {
		return errorJSON(ectx, http.StatusInternalServerError, err)
	}

	resp := runResponse{Stack: []any{}}
	if err == nil {
		resp.Result = top.Any()
	}
	for _, v := range machine.Stack.Values() {
		resp.Stack = append(resp.Stack, v.Any())
	}
	return ectx.JSON(http.StatusOK, resp)
}
