// token 本地联调用:按当前配置的密钥签发JWT
//
//	go run ./cmd/token -name boss -roles Manager
//	curl -H "Authorization: Bearer $(go run ./cmd/token -name alice)" localhost:8080/api/v1/inventory
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xiebiao/logitrax/internal/infrastructure/config"
	"github.com/xiebiao/logitrax/pkg/jwt"
)

func main() {
	name := flag.String("name", "", "调用者名字")
	roles := flag.String("roles", "", "角色,逗号分隔,如 Manager")
	expire := flag.Duration("expire", 0, "有效期,默认取jwt.token_expire")
	flag.Parse()

	if *name == "" {
		log.Fatal("必须指定 -name")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	ttl := cfg.JWT.TokenExpire
	if *expire > 0 {
		ttl = *expire
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	var roleList []string
	for _, r := range strings.Split(*roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roleList = append(roleList, r)
		}
	}

	manager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, ttl)
	token, err := manager.GenerateToken(*name, roleList...)
	if err != nil {
		log.Fatalf("签发失败: %v", err)
	}
	fmt.Println(token)
}
