package jobs

import (
	"context"
	"log"

	"stocklink/internal/models"
	"stocklink/internal/repositories"
)

// LowStockAlertService sweeps every owner's stock for records at or
// below their minimum threshold and logs the result. The sweep is a
// safety net behind the low-stock query the UI uses; it catches owners
// who never open the dashboard.
type LowStockAlertService struct {
	stockRepo repositories.StockRepository
}

func NewLowStockAlertService(stockRepo repositories.StockRepository) *LowStockAlertService {
	return &LowStockAlertService{
		stockRepo: stockRepo,
	}
}

// CheckLowStock returns every record across all owners that sits at or
// below its minimum threshold.
func (a *LowStockAlertService) CheckLowStock(ctx context.Context, limit int) ([]*models.StockRecord, error) {
	if limit <= 0 {
		limit = 1000
	}

	records, err := a.stockRepo.ListLowStockAll(ctx, limit)
	if err != nil {
		log.Printf("Failed to list low stock records: %v", err)
		return nil, err
	}
	return records, nil
}

// LogLowStockAlerts writes one line per record below threshold.
func (a *LowStockAlertService) LogLowStockAlerts(records []*models.StockRecord) {
	if len(records) == 0 {
		log.Println("No low stock alerts to log")
		return
	}

	for _, record := range records {
		log.Printf("ALERT: owner %s item '%s' (%s) in location %s has %d units (threshold: %d)",
			record.OwnerID.String(),
			record.Name,
			record.SKU,
			record.LocationID.String(),
			record.Quantity,
			record.MinThreshold)
	}
}

// ScheduledLowStockCheck is the periodic entry point.
func (a *LowStockAlertService) ScheduledLowStockCheck(ctx context.Context) error {
	log.Println("Starting scheduled low stock check")

	records, err := a.CheckLowStock(ctx, 1000)
	if err != nil {
		log.Printf("Scheduled low stock check failed: %v", err)
		return err
	}
	a.LogLowStockAlerts(records)

	log.Println("Scheduled low stock check completed successfully")
	return nil
}
