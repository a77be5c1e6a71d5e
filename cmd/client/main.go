package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/beatline/beatline/internal/logger"
	"github.com/beatline/beatline/internal/ui"
)

func main() {
	serverAddr := flag.String("server", "localhost:3170", "服务器地址")
	flag.Parse()

	// 日志写入文件，避免破坏终端界面
	if err := logger.Init(); err != nil {
		log.Printf("初始化日志失败: %v", err)
	}
	defer logger.Close()

	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			panic(r)
		}
	}()

	serverURL := fmt.Sprintf("ws://%s/ws", *serverAddr)
	if err := ui.Run(serverURL); err != nil {
		log.Fatalf("启动客户端时出错: %v", err)
	}
}
