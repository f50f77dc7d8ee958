package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.fiblab.net/sim/catalogue/config"
	"git.fiblab.net/sim/catalogue/request"
	"git.fiblab.net/sim/catalogue/router"
	"git.fiblab.net/sim/catalogue/snapshot"
	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const (
	MODE_MAKE_BASE        = "make_base"
	MODE_PROCESS_REQUESTS = "process_requests"
	MODE_SERVE            = "serve"
)

var (
	// 配置信息
	mode            = flag.String("mode", MODE_SERVE, "run mode [make_base, process_requests, serve]")
	inputPath       = flag.String("input", "", "JSON request document path (empty means stdin)")
	configPath      = flag.String("config", "", "YAML config file for serve mode (overrides the flags below)")
	mongoURI        = flag.String("mongo_uri", "", "mongo db uri")
	snapshotPathStr = flag.String("snapshot", "", "snapshot file or database and collection, overrides serialization_settings.file [format: {fspath} or {db}.{col}]")
	grpcEndpoint    = flag.String("listen", "localhost:52101", "connect listening address")
	logLevel        = flag.String("log-level", "info", "log level [debug, info, warn, error, fatal, panic]")

	// 性能测试
	benchmark = flag.Bool("benchmark", false, "benchmark mode")
	pprofAddr = flag.String("pprof", "localhost:52102", "pprof listening address")

	LOG_LEVELS = map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"fatal": logrus.FatalLevel,
		"panic": logrus.PanicLevel,
	}

	log = logrus.WithField("module", "main")
)

func main() {
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// 结果输出到stdout，日志输出到stderr
	logrus.SetOutput(os.Stderr)
	flag.Parse()

	var cfg *config.Config
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logrus.Fatalf("invalid config %s: %v", *configPath, err)
		}
		*logLevel = cfg.LogLevel
		*grpcEndpoint = cfg.Server.Listen
		*pprofAddr = cfg.Server.Pprof
		if cfg.Mongo.URI != "" {
			*mongoURI = cfg.Mongo.URI
		}
		if cfg.Snapshot != "" {
			*snapshotPathStr = cfg.Snapshot
		}
		if cfg.Document != "" {
			*inputPath = cfg.Document
		}
	}
	if level, ok := LOG_LEVELS[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		logrus.Fatalf("invalid log level: %s", *logLevel)
	}

	store := NewStore(*mongoURI)
	defer store.Close()
	ctx := context.Background()

	switch *mode {
	case MODE_MAKE_BASE:
		doc, err := readDocument(*inputPath)
		if err != nil {
			log.Fatalf("%v", err)
		}
		if err := makeBase(ctx, store, doc, *snapshotPathStr); err != nil {
			log.Fatalf("make base failed: %v", err)
		}
	case MODE_PROCESS_REQUESTS:
		doc, err := readDocument(*inputPath)
		if err != nil {
			log.Fatalf("%v", err)
		}
		if err := processRequests(ctx, store, doc, *snapshotPathStr, os.Stdout); err != nil {
			log.Fatalf("process requests failed: %v", err)
		}
	case MODE_SERVE:
		var fallback *router.Settings
		if cfg != nil {
			fallback = cfg.Routing
		}
		serve(ctx, store, fallback)
	default:
		log.Fatalf("invalid mode: %s", *mode)
	}
}

func readDocument(path string) (*request.Document, error) {
	var in io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}
	return request.Read(in)
}

// 快照位置：命令行优先，其次为文档中的serialization_settings.file
func snapshotLocation(doc *request.Document, override string) string {
	if override != "" {
		return override
	}
	return doc.SerializationSettings.File
}

// makeBase 由base_requests构建catalogue与路由图并保存快照
func makeBase(ctx context.Context, store *Store, doc *request.Document, override string) error {
	path, err := store.Path(snapshotLocation(doc, override))
	if err != nil {
		return err
	}
	r, err := doc.Build()
	if err != nil {
		return err
	}
	return store.Save(ctx, path, snapshot.Capture(r))
}

// processRequests 加载快照并回答stat_requests，不重新构建路由图
func processRequests(ctx context.Context, store *Store, doc *request.Document, override string, w io.Writer) error {
	path, err := store.Path(snapshotLocation(doc, override))
	if err != nil {
		return err
	}
	s, err := store.Load(ctx, path)
	if err != nil {
		return err
	}
	r, err := snapshot.Restore(s)
	if err != nil {
		return err
	}
	return request.Write(w, request.NewHandler(r).HandleAll(doc.StatRequests))
}

func snapshotLoader(store *Store) loaderFunc {
	return func(ctx context.Context, location string) (*router.Router, error) {
		path, err := store.Path(location)
		if err != nil {
			return nil, err
		}
		s, err := store.Load(ctx, path)
		if err != nil {
			return nil, err
		}
		return snapshot.Restore(s)
	}
}

// fallback用于补全文档中缺失的routing_settings
func documentLoader(fallback *router.Settings) loaderFunc {
	return func(ctx context.Context, location string) (*router.Router, error) {
		doc, err := readDocument(location)
		if err != nil {
			return nil, err
		}
		if doc.RoutingSettings == nil && fallback != nil {
			doc.RoutingSettings = &request.RoutingSettings{
				BusWaitTime: &fallback.BusWaitTime,
				BusVelocity: &fallback.BusVelocity,
			}
		}
		return doc.Build()
	}
}

func serve(ctx context.Context, store *Store, fallback *router.Settings) {
	// 启动查询服务
	var server *CatalogueServer
	var err error
	switch {
	case *snapshotPathStr != "":
		server, err = NewCatalogueServer(ctx, *snapshotPathStr, snapshotLoader(store))
	case *inputPath != "":
		server, err = NewCatalogueServer(ctx, *inputPath, documentLoader(fallback))
	default:
		err = errors.New("neither -snapshot nor -input is set")
	}
	if err != nil {
		log.Fatalf("failed to start server: %v", err)
	}

	if *pprofAddr != "" {
		// 启动pprof
		startHTTPDebugger(*pprofAddr)
	}

	if *benchmark {
		// 性能测试
		runBenchmark(server)
		return
	}

	addr := *grpcEndpoint
	// 使用HTTP/2 w.o. TLS
	s := &http.Server{
		Addr:    addr,
		Handler: h2c.NewHandler(server.Handler(), &http2.Server{}),
	}

	// 优雅退出
	// 创建监听退出chan
	signalCh := make(chan os.Signal, 1)
	//监听指定信号 ctrl+c kill
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalCh
		log.Info("stopping...")
		go func() {
			<-signalCh
			os.Exit(1) // 强制结束
		}()
		// 退出connect-go
		s.Close()
		store.Close()
		os.Exit(0)
	}()

	log.Infof("server listening at %v", s.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("failed to serve: %v", err)
	}
	time.Sleep(1 * time.Second) // 延迟等待"优雅退出"
	log.Info("catalogue closes")
}
