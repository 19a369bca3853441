// Package graceful 进程优雅退出：收到信号后先停 HTTP 服务，
// 再按注册顺序执行各组件的关闭函数。
package graceful

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gonglijing/shellydash/internal/logger"
)

// ShutdownFunc 关闭函数类型
type ShutdownFunc func(ctx context.Context) error

type namedFunc struct {
	name string
	fn   ShutdownFunc
}

// Manager 优雅关闭管理器
type Manager struct {
	timeout       time.Duration
	shutdownFuncs []namedFunc
	httpServer    *http.Server
	notifyChan    chan os.Signal
	once          sync.Once
	wg            sync.WaitGroup
}

// NewManager 创建管理器
func NewManager(timeout time.Duration) *Manager {
	return &Manager{
		timeout:       timeout,
		shutdownFuncs: make([]namedFunc, 0),
		notifyChan:    make(chan os.Signal, 1),
	}
}

// Register 注册关闭函数，name 只用于日志
func (g *Manager) Register(name string, f ShutdownFunc) {
	g.shutdownFuncs = append(g.shutdownFuncs, namedFunc{name: name, fn: f})
}

// SetHTTPServer 设置要关停的 HTTP 服务器
func (g *Manager) SetHTTPServer(srv *http.Server) {
	g.httpServer = srv
}

// Start 启动信号监听
func (g *Manager) Start() {
	signal.Notify(g.notifyChan, syscall.SIGINT, syscall.SIGTERM)

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		<-g.notifyChan
		logger.Info("Received shutdown signal, starting graceful shutdown")
		g.Shutdown()
	}()
}

// Shutdown 执行关闭，可安全重复调用
func (g *Manager) Shutdown() {
	g.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
		defer cancel()

		if g.httpServer != nil {
			logger.Info("Shutting down HTTP server")
			if err := g.httpServer.Shutdown(ctx); err != nil {
				logger.Error("HTTP server shutdown failed", err)
			}
		}

		for _, nf := range g.shutdownFuncs {
			logger.Info("Shutting down component", "component", nf.name)
			if err := nf.fn(ctx); err != nil {
				logger.Error("Component shutdown failed", err, "component", nf.name)
			}
		}

		logger.Info("Graceful shutdown completed")
	})
}

// Wait 等待关闭流程结束
func (g *Manager) Wait() {
	g.wg.Wait()
}

// Trigger 以编程方式触发关闭信号
func (g *Manager) Trigger() {
	select {
	case g.notifyChan <- syscall.SIGTERM:
	default:
	}
}
