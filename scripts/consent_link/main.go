// Command consent_link prints fresh approve and reject links for a consent,
// for support staff re-sending an expired email by hand.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/noah-isme/sma-health-api/internal/models"
	"github.com/noah-isme/sma-health-api/internal/service"
	"github.com/noah-isme/sma-health-api/pkg/config"
)

func main() {
	consentID := flag.String("consent", "", "Consent ID")
	flag.Parse()
	if *consentID == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	signer := service.NewConsentTokenSigner(cfg.ConsentToken.Secret, cfg.ConsentToken.TTL)

	for _, status := range []models.ConsentStatus{models.ConsentStatusApproved, models.ConsentStatusRejected} {
		token, expiresAt, err := signer.Issue(*consentID, status)
		if err != nil {
			log.Fatalf("failed to sign %s link: %v", status, err)
		}
		fmt.Printf("%s (expires %s)\n%s/public/consents/respond?token=%s\n\n",
			status, expiresAt.Local().Format("2006-01-02 15:04"), cfg.ConsentToken.PublicBaseURL, url.QueryEscape(token))
	}
}
