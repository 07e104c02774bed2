package jsonrpc

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/catalogfi/barter/daemon/rpc/methods"
	"github.com/catalogfi/barter/daemon/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type RPC interface {
	AddCommand(cmd methods.Method)
	Run(ctx context.Context, addr string) error
}

type rpc struct {
	commands   map[string]methods.Method
	coreConfig types.CoreConfig
	authsha    [sha256.Size]byte
}

// Request defines a JSON-RPC 2.0 request object.
type Request struct {
	Version string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response defines a JSON-RPC 2.0 response object.
type Response struct {
	Version string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error defines a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

// Error codes
const (
	ErrorCodeParseError        = -32700
	ErrorMessageParseError     = "Parse error"
	ErrorCodeMethodNotFound    = -32601
	ErrorMessageMethodNotFound = "Method not found"
	ErrorCodeInternalError     = -32603
	ErrorMessageInternalError  = "Internal error"
)

func NewResponse(id interface{}, result json.RawMessage, err *Error) Response {
	return Response{
		Version: "2.0",
		ID:      id,
		Result:  result,
		Error:   err,
	}
}

func NewError(code int, message string, data string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

func NewRpcServer(coreConfig types.CoreConfig, rpcUser, rpcPass string) RPC {
	if rpcUser == "" && rpcPass == "" {
		panic("RPC username and password must be specified")
	}

	login := rpcUser + ":" + rpcPass
	auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(login))

	server := &rpc{
		commands:   make(map[string]methods.Method),
		coreConfig: coreConfig,
		authsha:    sha256.Sum256([]byte(auth)),
	}
	server.AddCommand(methods.CreateSwap())
	server.AddCommand(methods.ExecuteSwap())
	server.AddCommand(methods.CancelSwap())
	server.AddCommand(methods.GetSwap())
	server.AddCommand(methods.ListSwaps())
	return server
}

func (r *rpc) AddCommand(cmd methods.Method) {
	r.commands[cmd.Name()] = cmd
}

func (r *rpc) Run(ctx context.Context, addr string) error {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	router.GET("/swaps", r.feed())
	authRoutes := router.Group("/")
	authRoutes.Use(r.authenticateUser)
	{
		authRoutes.POST("/", r.handleJSONRPC)
	}

	service := &http.Server{
		Addr:    addr,
		Handler: router,
	}
	go func() {
		if err := service.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.coreConfig.Logger.Error("rpc server stopped", zap.Error(err))
		}
	}()
	<-ctx.Done()
	return service.Shutdown(context.Background())
}

func (r *rpc) handleJSONRPC(ctx *gin.Context) {
	req := Request{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, NewResponse(req.ID, nil, NewError(ErrorCodeParseError, ErrorMessageParseError, err.Error())))
		return
	}

	cmd, ok := r.commands[req.Method]
	if !ok {
		ctx.JSON(http.StatusNotFound, NewResponse(req.ID, nil, NewError(ErrorCodeMethodNotFound, ErrorMessageMethodNotFound, "")))
		return
	}

	result, err := cmd.Query(ctx.Request.Context(), &r.coreConfig, req.Params)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, NewResponse(req.ID, nil, NewError(ErrorCodeInternalError, ErrorMessageInternalError, err.Error())))
		return
	}

	ctx.JSON(http.StatusOK, NewResponse(req.ID, result, nil))
}

func (r *rpc) authenticateUser(ctx *gin.Context) {
	authhdr := ctx.GetHeader("Authorization")
	if len(authhdr) <= 0 {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized Invalid credentials"})
		return
	}
	authsha := sha256.Sum256([]byte(authhdr))
	cmp := subtle.ConstantTimeCompare(authsha[:], r.authsha[:])
	if cmp != 1 {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized Invalid credentials"})
		return
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// feed streams creation events to websocket subscribers so counterparties
// can discover swaps awaiting their action without polling.
func (r *rpc) feed() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to upgrade to websocket"})
			return
		}
		defer ws.Close()

		events, err := r.coreConfig.Notifier.Subscribe(c.Request.Context())
		if err != nil {
			r.coreConfig.Logger.Error("failed to subscribe to creation events", zap.Error(err))
			return
		}
		for event := range events {
			if err := ws.WriteJSON(event); err != nil {
				r.coreConfig.Logger.Debug("failed to write message", zap.Error(err))
				return
			}
		}
	}
}
