package main

import (
	"fmt"
	"time"

	"agora/market/client"
	"github.com/eiannone/keyboard"
)

// cliListener is a cheap and nasty way to speed up development cycles. It
// listens for keypresses and executes commands.
func cliListener(c *client.Client, interrupt chan struct{}) {
	fmt.Println("COMMANDS:\np: my profile\ns: all stalls\nm: all merchants\nM: merchants in the configured marketplace\nc: current config\nw: wait 30s for a direct message\nq: to quit\nSee cliListener.go for more")
	for {
		r, k, err := keyboard.GetSingleKey()
		if err != nil {
			panic(err)
		}
		str := string(r)
		switch str {
		default:
			if k == 13 {
				fmt.Println("\n-----------------------------------")
				break
			}
			if r == 0 {
				break
			}
			fmt.Println("Key " + str + " is not bound to any test procedures. See main.cliListener for more details.")
		case "p":
			if j, err := c.Profile().ToJSON(); err == nil {
				fmt.Printf("\n%s\n", j)
			}
		case "s":
			stalls, err := c.GetStalls("")
			if err != nil {
				fmt.Printf("stall fetch failed: %s\n", err)
				break
			}
			for _, stall := range stalls {
				fmt.Printf("\nStall: %s (%s)\nCurrency: %s\nDescription: %s\n", stall.Name, stall.ID, stall.Currency, stall.Description)
			}
		case "m":
			merchants, err := c.GetMerchants(nil)
			if err != nil {
				fmt.Printf("merchant discovery failed: %s\n", err)
				break
			}
			for _, merchant := range merchants {
				fmt.Printf("\nMerchant: %s\nAbout: %s\nURL: %s\n", merchant.Name, merchant.About, merchant.ProfileURL)
			}
		case "M":
			owner := MakeOrGetConfig().GetString("marketplaceOwner")
			name := MakeOrGetConfig().GetString("marketplaceName")
			if owner == "" || name == "" {
				fmt.Println("set marketplaceOwner and marketplaceName in config.yaml first")
				break
			}
			merchants, err := c.GetMerchantsInMarketplace(owner, name, nil)
			if err != nil {
				fmt.Printf("marketplace lookup failed: %s\n", err)
				break
			}
			fmt.Printf("\n%d merchants in %q\n", len(merchants), name)
			for _, merchant := range merchants {
				fmt.Printf("\nMerchant: %s\nAbout: %s\n", merchant.Name, merchant.About)
			}
		case "c":
			fmt.Println("CURRENT CONFIG")
			for k, v := range MakeOrGetConfig().AllSettings() {
				fmt.Printf("\nKey: %s; Value: %v\n", k, v)
			}
		case "w":
			fmt.Println("waiting up to 30s for a direct message...")
			msg, err := c.ReceiveMessage(time.Second * 30)
			if err != nil {
				fmt.Printf("receive failed: %s\n", err)
				break
			}
			fmt.Printf("\nFrom: %s\nType: %s\n%s\n", msg.Sender, msg.Type, msg.Content)
		case "q":
			close(interrupt)
			return
		}
	}
}
