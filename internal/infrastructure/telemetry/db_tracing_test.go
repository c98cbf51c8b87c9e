package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func setupRecorder(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, sr
}

func hasAttribute(attrs []attribute.KeyValue, key string) bool {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return true
		}
	}
	return false
}

func TestDBTracingPlugin_Register_Disabled(t *testing.T) {
	db := setupTestDB(t)
	plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())

	require.NoError(t, plugin.Register(db))
	assert.Nil(t, db.Callback().Query().Get("otel_timing:after_query"))
}

func TestDBTracingPlugin_Register_Enabled(t *testing.T) {
	db := setupTestDB(t)
	tp, sr := setupRecorder(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, DBSystem: "sqlite"}, zap.NewNop())

	require.NoError(t, plugin.Register(db))
	assert.NotNil(t, db.Callback().Query().Get("otel_timing:after_query"))
	assert.Equal(t, 200*time.Millisecond, plugin.config.SlowQueryThresh)

	ctx, span := tp.Tracer("test").Start(context.Background(), "batch")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "order"}).Error)
	var found tracedRow
	require.NoError(t, db.WithContext(ctx).First(&found).Error)
	span.End()

	assert.Equal(t, "order", found.Name)
	assert.NotEmpty(t, sr.Ended())
}

func TestDBTracingPlugin_AfterQuery(t *testing.T) {
	tp, sr := setupRecorder(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Nanosecond}, zap.NewNop())

	ctx, span := tp.Tracer("test").Start(context.Background(), "query")
	ctx = WithQueryStartTime(ctx)
	time.Sleep(time.Millisecond)

	db := setupTestDB(t).WithContext(ctx)
	db.Statement.Table = "erp_sales_documents"
	db.Statement.RowsAffected = 2
	db.Error = gorm.ErrInvalidTransaction
	plugin.afterQuery(db)
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	attrs := ended[0].Attributes()
	assert.True(t, hasAttribute(attrs, "db.sql.table"))
	assert.True(t, hasAttribute(attrs, "db.rows_affected"))
	assert.True(t, hasAttribute(attrs, "db.slow_query"))
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}

func TestDBTracingPlugin_AfterQuery_IgnoresNotFound(t *testing.T) {
	tp, sr := setupRecorder(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Hour}, zap.NewNop())

	ctx, span := tp.Tracer("test").Start(context.Background(), "query")
	db := setupTestDB(t).WithContext(WithQueryStartTime(ctx))
	db.Error = gorm.ErrRecordNotFound
	plugin.afterQuery(db)
	span.End()

	ended := sr.Ended()[0]
	assert.NotEqual(t, codes.Error, ended.Status().Code)
	assert.False(t, hasAttribute(ended.Attributes(), "db.slow_query"))
}
