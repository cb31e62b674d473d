package pagepool

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Monitor logs pool activity every interval until ctx is done. Nothing is
// logged for intervals without page traffic.
func (p *Pool) Monitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastIns, lastOuts int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ins := p.stats.pageIns.Load()
			outs := p.stats.pageOuts.Load()
			if ins == lastIns && outs == lastOuts {
				continue
			}
			p.log.Info("page pool activity",
				zap.Int64("page_ins", ins-lastIns),
				zap.Int64("page_outs", outs-lastOuts),
				zap.Int64("bytes_read", p.stats.bytesRead.Load()),
				zap.Int64("bytes_written", p.stats.bytesWritten.Load()),
				zap.Int64("resident", p.stats.resident.Load()),
				zap.Int64("max_pages", p.stats.maxPages.Load()),
			)
			lastIns, lastOuts = ins, outs
		}
	}
}
