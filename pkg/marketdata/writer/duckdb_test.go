package writer

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/argo-analysis/internal/indicator"
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/mocks"
	"github.com/stretchr/testify/suite"
)

type DuckDBWriterTestSuite struct {
	suite.Suite
	tempDir string
	table   *indicator.Table
}

func TestDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(DuckDBWriterTestSuite))
}

func (suite *DuckDBWriterTestSuite) SetupSuite() {
	tempDir, err := os.MkdirTemp("", "duckdb-writer-test")
	suite.Require().NoError(err)
	suite.tempDir = tempDir

	engine, err := indicator.NewEngine(indicator.DefaultParams())
	suite.Require().NoError(err)
	suite.table = engine.Compute(mocks.Series("AAPL", 40))
}

func (suite *DuckDBWriterTestSuite) TearDownSuite() {
	if suite.tempDir != "" {
		os.RemoveAll(suite.tempDir)
	}
}

func (suite *DuckDBWriterTestSuite) TestNewDuckDBWriter() {
	outputPath := filepath.Join(suite.tempDir, "test.parquet")
	writer := NewDuckDBWriter(outputPath)

	duckWriter, ok := writer.(*DuckDBWriter)
	suite.True(ok)
	suite.Equal(outputPath, writer.GetOutputPath())
	suite.Nil(duckWriter.db)
	suite.Nil(duckWriter.tx)
	suite.Nil(duckWriter.stmt)
}

func (suite *DuckDBWriterTestSuite) TestWriteWithoutInitialize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "no_init.parquet"))

	row, _ := suite.table.Row(0)
	err := writer.Write("AAPL", row)
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")

	_, err = writer.Finalize()
	suite.Error(err)
}

func (suite *DuckDBWriterTestSuite) TestCloseWithoutFinalize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "abandoned.parquet"))
	suite.Require().NoError(writer.Initialize(suite.table.Columns()))

	row, _ := suite.table.Row(0)
	suite.NoError(writer.Write("AAPL", row))
	suite.NoError(writer.Close())

	_, err := os.Stat(writer.GetOutputPath())
	suite.True(os.IsNotExist(err))
}

func (suite *DuckDBWriterTestSuite) TestWriteTableExportsParquet() {
	outputPath := filepath.Join(suite.tempDir, "aapl.parquet")

	path, err := WriteTable(NewDuckDBWriter(outputPath), suite.table)
	suite.Require().NoError(err)
	suite.Equal(outputPath, path)

	db, err := sql.Open("duckdb", ":memory:")
	suite.Require().NoError(err)
	defer db.Close()

	var count, smaDefined, rsiDefined int

	err = db.QueryRow(
		"SELECT COUNT(*), COUNT(sma_10), COUNT(rsi) FROM read_parquet('" + outputPath + "')",
	).Scan(&count, &smaDefined, &rsiDefined)
	suite.Require().NoError(err)

	sma, _ := suite.table.Column(types.IndicatorTypeSMA10)
	rsi, _ := suite.table.Column(types.IndicatorTypeRSI)

	suite.Equal(40, count)
	suite.Equal(sma.DefinedCount(), smaDefined)
	suite.Equal(rsi.DefinedCount(), rsiDefined)

	var lastClose float64

	err = db.QueryRow(
		"SELECT close FROM read_parquet('" + outputPath + "') ORDER BY time DESC LIMIT 1",
	).Scan(&lastClose)
	suite.Require().NoError(err)
	suite.Equal(suite.table.Closes()[39], lastClose)
}
