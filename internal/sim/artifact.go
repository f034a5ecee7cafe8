package sim

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"
)

// parquetRow mirrors Result with parquet tags; degraded points carry the
// diagnostic in the error column.
type parquetRow struct {
	Size            float64 `parquet:"name=size, type=DOUBLE"`
	CostOnActive    float64 `parquet:"name=cost_on_active, type=DOUBLE"`
	TokensBought    float64 `parquet:"name=tokens_after_buy_tax, type=DOUBLE"`
	ProceedsOnStale float64 `parquet:"name=proceeds_on_stale, type=DOUBLE"`
	GasCost         float64 `parquet:"name=gas_cost, type=DOUBLE"`
	SlippageCost    float64 `parquet:"name=slippage_cost, type=DOUBLE"`
	NetPnl          float64 `parquet:"name=net_pnl, type=DOUBLE"`
	EdgeBps         float64 `parquet:"name=edge_bps, type=DOUBLE"`
	Err             string  `parquet:"name=error, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// WriteParquet writes the same rows as WriteJSON in parquet form, for
// loading sweeps into notebooks.
func WriteParquet(path string, results []Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("open parquet file: %w", err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(parquetRow), 4)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	for _, r := range results {
		row := parquetRow{
			Size:            r.Size,
			CostOnActive:    r.CostOnActive,
			TokensBought:    r.TokensBought,
			ProceedsOnStale: r.ProceedsOnStale,
			GasCost:         r.GasCost,
			SlippageCost:    r.SlippageCost,
			NetPnl:          r.NetPnl,
			EdgeBps:         r.EdgeBps,
			Err:             r.Err,
		}
		if err := pw.Write(row); err != nil {
			return fmt.Errorf("write parquet row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finalize parquet: %w", err)
	}
	return nil
}
