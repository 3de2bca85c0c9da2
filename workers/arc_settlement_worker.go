// workers/arc_settlement_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"rap-battle-platform/models"
)

// ArcSettlementWorker confirms pending simulated-chain transactions after a
// fixed delay, assigning them monotonic block numbers. This is the
// "consensus" of the demo chain.
type ArcSettlementWorker struct {
	db           *gorm.DB
	interval     time.Duration
	confirmAfter time.Duration
}

func NewArcSettlementWorker(db *gorm.DB) *ArcSettlementWorker {
	return &ArcSettlementWorker{
		db:           db,
		interval:     5 * time.Second,
		confirmAfter: 15 * time.Second,
	}
}

func (w *ArcSettlementWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Arc Settlement Worker (pending → confirmed)…")
	go w.run(ctx)
}

func (w *ArcSettlementWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.settleBatch(); err != nil {
				log.Printf("❌ [ARC] Settlement batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Arc Settlement Worker stopped")
			return
		}
	}
}

// settleBatch confirms all pending transactions older than the confirmation
// delay, one block per transaction.
func (w *ArcSettlementWorker) settleBatch() error {
	cutoff := time.Now().Add(-w.confirmAfter)

	var pending []models.ArcTransaction
	if err := w.db.
		Where("status = ? AND created_at < ?", models.ArcTxStatusPending, cutoff).
		Order("created_at ASC").
		Find(&pending).Error; err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	nextBlock := w.nextBlockNumber()
	now := time.Now()

	for i := range pending {
		tx := &pending[i]
		tx.Status = models.ArcTxStatusConfirmed
		tx.BlockNumber = nextBlock
		tx.ConfirmedAt = &now
		nextBlock++

		if err := w.db.Save(tx).Error; err != nil {
			log.Printf("❌ [ARC] Failed to confirm tx %s: %v", tx.TxHash, err)
			continue
		}
		log.Printf("⛓️ [ARC] Confirmed %s in block %d", tx.TxHash, tx.BlockNumber)
	}

	return nil
}

func (w *ArcSettlementWorker) nextBlockNumber() int64 {
	var maxBlock int64
	err := w.db.Raw("SELECT COALESCE(MAX(block_number), 0) FROM arc_transactions").Scan(&maxBlock).Error
	if err != nil {
		return 1
	}
	return maxBlock + 1
}
