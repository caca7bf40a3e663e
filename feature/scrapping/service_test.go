package scrapping

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"krosmoz-scrapper/core/cache"
	"krosmoz-scrapper/core/storage/mocks"
	"krosmoz-scrapper/feature/alias"
	"krosmoz-scrapper/feature/collect"
	"krosmoz-scrapper/feature/conversion"
	"krosmoz-scrapper/feature/gameconfig"
	"krosmoz-scrapper/feature/integration"
	"krosmoz-scrapper/feature/limits"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// monsterRemote serves count monsters and fails on failOnPage when positive.
type monsterRemote struct {
	count      int
	failOnPage int
	requests   []collect.PageRequest
}

func (m *monsterRemote) FetchPage(_ context.Context, _ string, req collect.PageRequest) (*collect.Page, error) {
	m.requests = append(m.requests, req)
	if m.failOnPage > 0 && req.Number == m.failOnPage {
		return nil, errors.New("connection reset")
	}
	page := &collect.Page{Total: m.count}
	for i := req.Offset; i < req.Offset+req.Size && i < m.count; i++ {
		page.Records = append(page.Records, collect.Record(fmt.Sprintf(
			`{"id":%d,"name":{"fr":"Monstre %d"},"race":1,"grades":[{"level":%d,"lifePoints":%d}]}`, i+1, i+1, i%200+1, (i+1)*10)))
	}
	return page, nil
}

type env struct {
	svc    *Service
	db     *gorm.DB
	remote *monsterRemote
	store  *gameconfig.Store
}

var registry = alias.NewRegistry(map[string]alias.CollectAlias{
	"monster": {Source: "dofusdb", Entity: "monster", Label: "Monstres"},
	"ghost":   {Source: "nowhere", Entity: "monster"},
})

func newEnv(t *testing.T, remoteCount int, archive *Archive) *env {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gameconfig.Migrate(db))
	require.NoError(t, integration.Migrate(db))

	ctx := context.Background()
	store := gameconfig.NewStore(db, zap.NewNop())
	for _, key := range integration.FormulaKeys() {
		require.NoError(t, store.SaveFormula(ctx, gameconfig.ConversionFormula{Key: key, Expression: "value"}))
	}

	cs := cache.NewStore(cache.NewMemory(), "test:", zap.NewNop())
	characteristics := conversion.NewCharacteristics(store, cs)
	formulas := conversion.NewFormulas(store, cs)
	equipment := conversion.NewEquipment(store, cs)
	conversion.Wire(store, characteristics, formulas, equipment)

	remote := &monsterRemote{count: remoteCount}
	collector := collect.NewCollector(limits.Default(), zap.NewNop())
	collector.Register("dofusdb", remote)

	svc := NewService(Deps{
		Resolver:        alias.NewStaticResolver(registry),
		Collector:       collector,
		Integrator:      integration.New(db, formulas, characteristics, "fr", zap.NewNop()),
		Archive:         archive,
		Store:           store,
		Characteristics: characteristics,
		Formulas:        formulas,
		Equipment:       equipment,
	}, Config{DefaultPageSize: 50, FallbackCap: 1000}, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	return &env{svc: svc, db: db, remote: remote, store: store}
}

func (e *env) count(t *testing.T, model any) int64 {
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func TestRun_UnknownAlias(t *testing.T) {
	e := newEnv(t, 10, nil)
	report, err := e.svc.Run(context.Background(), "dragon", RunOptions{})
	assert.ErrorIs(t, err, ErrUnknownAlias)
	assert.Nil(t, report)
	assert.Empty(t, e.remote.requests)
}

func TestRun_UnknownSource(t *testing.T) {
	e := newEnv(t, 10, nil)
	_, err := e.svc.Run(context.Background(), "ghost", RunOptions{})
	assert.ErrorIs(t, err, collect.ErrUnknownSource)
}

func TestRun_CapReachedThenSkipped(t *testing.T) {
	e := newEnv(t, 500, nil)
	ctx := context.Background()

	report, err := e.svc.Run(ctx, " Monster ", RunOptions{PageSize: 200, Max: 120})
	require.NoError(t, err)
	assert.Equal(t, collect.StopCapReached, report.StopReason)
	assert.True(t, report.CapReached())
	assert.Equal(t, 3, report.Stats.Pages)
	assert.Equal(t, 120, report.Processed)
	assert.Equal(t, 120, report.Created)
	assert.Zero(t, report.Failed)
	assert.Equal(t, int64(120), e.count(t, &integration.Monster{}))
	assert.Equal(t, int64(120), e.count(t, &integration.Creature{}))

	again, err := e.svc.Run(ctx, "monster", RunOptions{PageSize: 200, Max: 120})
	require.NoError(t, err)
	assert.Equal(t, 120, again.Skipped)
	assert.Zero(t, again.Created)
}

func TestRun_LastPage(t *testing.T) {
	e := newEnv(t, 70, nil)
	report, err := e.svc.Run(context.Background(), "monster", RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, collect.StopLastPage, report.StopReason)
	assert.False(t, report.CapReached())
	assert.Equal(t, 70, report.Processed)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	e := newEnv(t, 30, nil)
	report, err := e.svc.Run(context.Background(), "monster", RunOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 30, report.Created)
	assert.Zero(t, e.count(t, &integration.Monster{}))
}

func TestRun_UnknownFormulaAborts(t *testing.T) {
	e := newEnv(t, 100, nil)
	require.NoError(t, e.store.DeleteFormula(context.Background(), "monster.life"))

	report, err := e.svc.Run(context.Background(), "monster", RunOptions{})
	assert.ErrorIs(t, err, conversion.ErrUnknownFormula)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, collect.StopAborted, report.StopReason)
	assert.NotEmpty(t, report.Error)
	assert.Len(t, e.remote.requests, 1)
	assert.Zero(t, e.count(t, &integration.Monster{}))
}

func TestRun_UnknownFormulaOnLastPageAborts(t *testing.T) {
	e := newEnv(t, 10, nil)
	require.NoError(t, e.store.DeleteFormula(context.Background(), "monster.life"))

	report, err := e.svc.Run(context.Background(), "monster", RunOptions{})
	assert.ErrorIs(t, err, conversion.ErrUnknownFormula)
	require.NotNil(t, report)
	assert.Equal(t, collect.StopAborted, report.StopReason)
	assert.False(t, report.CapReached())
	assert.Equal(t, 1, report.Processed)
}

func TestRun_RemoteFailureKeepsPartialReport(t *testing.T) {
	e := newEnv(t, 500, nil)
	e.remote.failOnPage = 2

	report, err := e.svc.Run(context.Background(), "monster", RunOptions{})
	assert.ErrorIs(t, err, collect.ErrRemoteIO)
	var remoteErr *collect.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.True(t, remoteErr.Retryable())

	require.NotNil(t, report)
	assert.Equal(t, collect.StopRemoteError, report.StopReason)
	assert.Equal(t, 100, report.Processed)
	assert.Equal(t, int64(100), e.count(t, &integration.Monster{}))
}

func TestRun_Archive(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "scrapping").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "scrapping", minio.MakeBucketOptions{Region: "eu"}).Return(nil)
	client.On("PutObject", mock.Anything, "scrapping", mock.AnythingOfType("string"), mock.Anything, mock.AnythingOfType("int64"),
		minio.PutObjectOptions{ContentType: "application/json"}).Return(minio.UploadInfo{}, nil)

	e := newEnv(t, 60, NewArchive(client, "scrapping", "eu"))
	report, err := e.svc.Run(context.Background(), "monster", RunOptions{Archive: true})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"raw/monster/20260102T030405Z/page-000.json",
		"raw/monster/20260102T030405Z/page-001.json",
	}, report.Archived)
	client.AssertNumberOfCalls(t, "PutObject", 2)
	client.AssertExpectations(t)
}

func TestRun_ArchiveFailureEndsRun(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "scrapping").Return(true, nil)
	client.On("PutObject", mock.Anything, "scrapping", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("disk full"))

	e := newEnv(t, 60, NewArchive(client, "scrapping", ""))
	report, err := e.svc.Run(context.Background(), "monster", RunOptions{Archive: true})
	require.Error(t, err)
	require.NotNil(t, report)
	assert.Zero(t, report.Processed)
	client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_ArchiveWithoutStorage(t *testing.T) {
	e := newEnv(t, 10, nil)
	_, err := e.svc.Run(context.Background(), "monster", RunOptions{Archive: true})
	assert.ErrorIs(t, err, ErrArchiveUnavailable)
}

func TestRun_CancelledBetweenPages(t *testing.T) {
	e := newEnv(t, 500, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := e.svc.Run(ctx, "monster", RunOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, collect.StopAborted, report.StopReason)
	assert.Zero(t, report.Processed)
}
