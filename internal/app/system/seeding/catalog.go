package seeding

import (
	"context"

	categorystore "github.com/dalemusser/eventhub/internal/app/store/categories"
	servicestore "github.com/dalemusser/eventhub/internal/app/store/services"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.uber.org/zap"
)

var passBenefits = []string{"Text Mepass", "QR Security", "Unlimited Seller Users", "Unlimited scanning Users"}

// ServiceCatalog is the marketplace price list installed on an empty database.
func ServiceCatalog() []models.Service {
	svc := func(title string, amount float64, typ, unit string) models.Service {
		return models.Service{
			Title:    title,
			Price:    models.ServicePrice{Amount: amount, Type: typ, Unit: unit},
			Benefits: append([]string(nil), passBenefits...),
			IsActive: true,
		}
	}
	return []models.Service{
		svc("Event Host", 1000, models.PriceFixed, ""),
		svc("Onboarding", 5000, models.PriceFixed, ""),
		svc("WhatsApp Mepass", 4, models.PriceVariable, "Per Unit"),
		svc("Digital Text Mepass", 2, models.PriceVariable, "Per Unit"),
		svc("Printed Mepass", 1, models.PriceVariable, "Per Unit"),
		svc("Convenience Charge", 5, models.PricePercentage, "%"),
		svc("Merchant Convenience Charge", 8, models.PricePercentage, "%"),
		svc("DIGI Mepass", 5, models.PriceVariable, "Per Unit"),
	}
}

// DefaultCategories are the event categories installed on an empty database.
func DefaultCategories() []models.Category {
	return []models.Category{
		{Name: "Music", Description: "Concerts and festivals", Icon: "music_note"},
		{Name: "Technology", Description: "Tech conferences and hackathons", Icon: "computer"},
		{Name: "Business", Description: "Networking and seminars", Icon: "business_center"},
		{Name: "Health", Description: "Yoga and health workshops", Icon: "fitness_center"},
		{Name: "Arts", Description: "Art exhibitions and theater", Icon: "palette"},
	}
}

// CatalogResult counts what Catalog inserted.
type CatalogResult struct {
	Services   int
	Categories int
}

// Catalog installs the service catalog and default categories. Each set is
// only inserted into an empty collection, so running it again is a no-op.
func Catalog(ctx context.Context, services *servicestore.Store, categories *categorystore.Store, logger *zap.Logger) (CatalogResult, error) {
	var res CatalogResult

	n, err := services.InsertIfEmpty(ctx, ServiceCatalog())
	if err != nil {
		logger.Error("failed to seed services", zap.Error(err))
		return res, err
	}
	res.Services = n

	count, err := categories.Count(ctx)
	if err != nil {
		logger.Error("failed to count categories", zap.Error(err))
		return res, err
	}
	if count == 0 {
		for _, c := range DefaultCategories() {
			if _, err := categories.Create(ctx, c); err != nil {
				logger.Error("failed to seed category", zap.String("name", c.Name), zap.Error(err))
				return res, err
			}
			res.Categories++
		}
	}

	if res.Services > 0 || res.Categories > 0 {
		logger.Info("seeded catalog",
			zap.Int("services", res.Services),
			zap.Int("categories", res.Categories))
	}
	return res, nil
}
