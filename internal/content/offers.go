package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/brightlane/cardrank/internal/domain"
)

// LoadOffers reads the affiliate offer catalog.
func LoadOffers(path string) ([]domain.Offer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read offers: %w", err)
	}

	var doc struct {
		Offers []domain.Offer `yaml:"offers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse offers: %w", err)
	}

	for _, o := range doc.Offers {
		if o.ID == "" || o.IssuerID == "" {
			return nil, fmt.Errorf("offer missing id or issuer_id: %+v", o)
		}
	}
	return doc.Offers, nil
}
