// Command token mints a signed token for local testing, with the server's JWT settings.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"social-chat/auth"
	"social-chat/domain/chat"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

type Config struct {
	JwtSecret string `env:"JWT_SECRET,required=true"`
	JwtIssuer string `env:"JWT_ISSUER,default=social-chat"`
}

func main() {
	userID := flag.String("user", "", "User id carried by the token")
	roles := flag.String("roles", "", "Comma separated roles, e.g. admin")
	duration := flag.Duration("duration", 24*time.Hour, "Token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}

	var roleList []string
	if *roles != "" {
		roleList = strings.Split(*roles, ",")
	}
	token, err := auth.NewTokenAuthority(config.JwtSecret, config.JwtIssuer, *duration).
		GenerateToken(chat.UserID(*userID), roleList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to mint token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
