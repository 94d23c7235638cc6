package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"windfield/calculator"
	"windfield/server"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func main() {
	var (
		confPath = flag.String("conf", "conf/config.ini", "ini file with a [windfield] section")
		inPath   = flag.String("in", "", "load a binary field instead of synthesizing one")
		outPath  = flag.String("out", "", "write the field in binary layout")
		txtPath  = flag.String("txt", "", "write the field as text")
		serve    = flag.Bool("serve", false, "serve websocket queries after loading")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	file, err := ini.Load(*confPath)
	if err != nil {
		log.WithError(err).Fatal("读取配置文件失败")
	}

	field, err := loadField(ctx, file, *inPath)
	if err != nil {
		log.WithError(err).Fatal("风场生成失败")
	}

	if *outPath != "" {
		if err := field.SaveBinary(*outPath); err != nil {
			log.WithError(err).Fatal("导出二进制文件失败")
		}
	}
	if *txtPath != "" {
		if err := field.SaveText(*txtPath); err != nil {
			log.WithError(err).Fatal("导出文本文件失败")
		}
	}

	if *serve {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
		addr := file.Section("server").Key("addr").MustString(":9000")
		s := server.NewServer(addr, upgrader, field)
		if err := s.Serve(); err != nil {
			log.WithError(err).Fatal("服务退出")
		}
	}
}

func loadField(ctx context.Context, file *ini.File, in string) (*calculator.WindField, error) {
	if in != "" {
		return calculator.LoadBinary(in)
	}
	cfg := calculator.ConfigFromFile(file)
	field, err := calculator.NewWindField(cfg)
	if err != nil {
		return nil, err
	}
	if err := field.CalculateField(ctx); err != nil {
		return nil, err
	}
	return field, nil
}
