package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/term"

	"vaultEnvelopes/internal/auth"
	"vaultEnvelopes/internal/config"
	"vaultEnvelopes/internal/database"
)

func main() {
	var (
		username = flag.String("username", "", "管理员用户名（默认读 ADMIN_USERNAME）")
		reset    = flag.Bool("reset", false, "重置已存在管理员的口令")
		prompt   = flag.Bool("prompt", false, "从终端输入口令，否则随机生成")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	u := strings.TrimSpace(*username)
	if u == "" {
		u = strings.TrimSpace(cfg.Auth.AdminUsername)
	}
	if u == "" {
		log.Fatal("missing admin username: pass --username or set ADMIN_USERNAME")
	}

	db, err := database.InitDatabase(cfg.Database, cfg.App.IsDevelopment())
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	ctx := context.Background()
	admins := database.NewAdminStore(db)

	existing, err := admins.FindByUsername(ctx, u)
	switch {
	case err == nil && !*reset:
		log.Fatalf("admin %q already exists (use --reset to change its password)", u)
	case errors.Is(err, database.ErrNotFound) && *reset:
		log.Fatalf("admin %q does not exist", u)
	case err != nil && !errors.Is(err, database.ErrNotFound):
		log.Fatalf("query admin: %v", err)
	}

	password, generated, err := choosePassword(*prompt)
	if err != nil {
		log.Fatalf("read password: %v", err)
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	if *reset {
		if err := admins.UpdatePassword(ctx, existing.ID, hashed); err != nil {
			log.Fatalf("reset password: %v", err)
		}
		fmt.Printf("已重置管理员口令：%s\n", u)
	} else {
		if _, err := admins.Create(ctx, u, hashed); err != nil {
			log.Fatalf("create admin: %v", err)
		}
		fmt.Printf("已创建管理员账号：%s\n", u)
	}

	if generated {
		fmt.Printf("口令: %s\n", password)
		fmt.Printf("提示：该口令仅显示一次，请妥善保存。\n")
	}
}

// choosePassword 终端输入需确认两次；未指定 --prompt 时生成随机口令。
func choosePassword(prompt bool) (string, bool, error) {
	if !prompt {
		password, err := auth.GenerateRandomPassword(24)
		return password, true, err
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", false, errors.New("--prompt requires an interactive terminal")
	}

	fmt.Print("Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", false, err
	}
	fmt.Print("Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", false, err
	}

	if len(first) == 0 {
		return "", false, errors.New("password must not be empty")
	}
	if string(first) != string(second) {
		return "", false, errors.New("passwords do not match")
	}
	return string(first), false, nil
}
