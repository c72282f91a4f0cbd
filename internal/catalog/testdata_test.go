package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"tea-kart/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func sampleProducts() []model.Product {
	return []model.Product{
		{ID: "1", Title: "Earl Grey Premium", Category: model.CategoryBlackTea, Price: decimal.NewFromInt(450), IsAvailable: true},
		{ID: "2", Title: "Dragon Well", Category: model.CategoryGreenTea, Price: decimal.NewFromInt(380), IsAvailable: true},
		{ID: "3", Title: "Himalayan Gold", Category: model.CategoryBlackTea, Price: decimal.RequireFromString("650.50"), IsAvailable: true},
	}
}

// createTestSnapshot writes products as a gzipped snapshot file.
func createTestSnapshot(t *testing.T, filename string, products []model.Product) string {
	t.Helper()
	filePath := filepath.Join(t.TempDir(), filename)

	file, err := os.Create(filePath)
	require.NoError(t, err)
	defer file.Close()

	require.NoError(t, WriteSnapshot(file, products))
	return filePath
}
