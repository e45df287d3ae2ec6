package main

import (
	"fmt"
	"os"

	"agora/engine/library"
	"agora/market/client"
	"agora/market/identity"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const privateKeyEnv = "AGORA_PRIVATE_KEY"

func main() {
	// Various aspects of this application require global and local settings.
	// To keep things clean and tidy we put these settings in a Viper
	// configuration.
	conf := viper.New()
	InitConfig(conf)
	SetConfig(conf)

	key, err := loadOrCreateKey()
	if err != nil {
		library.LogCLI(err.Error(), 0)
	}
	c, err := client.New(conf.GetStringSlice("relays"), key)
	if err != nil {
		library.LogCLI(err.Error(), 0)
	}
	defer c.Close()

	npub, _ := c.Keys().PublicKey(identity.EncodingDisplay)
	fmt.Printf("connected as %s\n", npub)

	interrupt := make(chan struct{})
	sleepChan := make(chan bool)
	sleeper(sleepChan)
	go cliListener(c, interrupt)

	select {
	case <-interrupt:
	case <-sleepChan:
		library.LogCLI("machine going to sleep, shutting down", 3)
	}
	fmt.Println("bye")
}

// loadOrCreateKey reads the private key from the environment (a .env file in
// the working directory is honored), generating and persisting a fresh one
// on first run.
func loadOrCreateKey() (string, error) {
	if err := godotenv.Load(); err != nil {
		library.LogCLI("no .env file found, using environment only", 4)
	}
	if key := os.Getenv(privateKeyEnv); key != "" {
		return key, nil
	}
	keys, err := identity.Generate()
	if err != nil {
		return "", err
	}
	nsec, err := keys.PrivateKey(identity.EncodingDisplay)
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(".env", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%s=%s\n", privateKeyEnv, nsec); err != nil {
		return "", err
	}
	library.LogCLI("generated a new identity and saved it to .env", 3)
	return nsec, nil
}
