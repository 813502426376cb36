package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"drawify/internal/app/canvas"
	"drawify/internal/app/shape"
	"drawify/internal/app/store"
)

type mockStorage struct {
	mock.Mock
	uploaded []byte
}

func (m *mockStorage) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	data, _ := io.ReadAll(body)
	m.uploaded = data
	return m.Called(ctx, key, contentType).Error(0)
}

func (m *mockStorage) PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error) {
	args := m.Called(ctx, key, duration)
	return args.String(0), args.Error(1)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func seededStore(t *testing.T) *store.Memory {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()
	_, err := mem.PutRoom(ctx, store.Room{ID: 42, Slug: "room-42", AdminID: "admin"})
	require.NoError(t, err)

	hatched := shape.NewRect(0, 0, 120, 80)
	hatched.Config.Fill = "#ffcc00"
	hatched.Config.FillStyle = shape.FillCrossHatch

	solid := shape.NewCircle(200, 100, 40)
	solid.Config.Fill = "rgba(0,128,255,0.5)"

	for _, s := range []shape.Shape{
		hatched,
		solid,
		shape.NewLine(0, 200, 300, 250),
		shape.NewPencil(shape.Pt(10, 10), shape.Pt(20, 30), shape.Pt(40, 35)),
	} {
		_, err := mem.InsertChat(ctx, 42, "u1", s)
		require.NoError(t, err)
	}
	return mem
}

func TestRenderPDF(t *testing.T) {
	x := NewExporter(seededStore(t), nil, 0)

	var buf bytes.Buffer
	require.NoError(t, x.RenderPDF(context.Background(), 42, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Contains(t, buf.String(), "%%EOF")
}

func TestRenderPDFUnknownRoom(t *testing.T) {
	x := NewExporter(store.NewMemory(), nil, 0)

	err := x.RenderPDF(context.Background(), 7, io.Discard)
	assert.True(t, store.IsRoomNotFound(err))
}

func TestExport(t *testing.T) {
	svc := &mockStorage{}
	keyPattern := regexp.MustCompile(`^rooms/42/[0-9a-f-]{36}\.pdf$`)
	isKey := mock.MatchedBy(func(k string) bool { return keyPattern.MatchString(k) })

	svc.On("Upload", mock.Anything, isKey, "application/pdf").Return(nil)
	svc.On("PresignDownload", mock.Anything, isKey, LinkTTL).Return("https://bucket/signed", nil)

	x := NewExporter(seededStore(t), svc, 0)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	x.now = func() time.Time { return fixed }

	res, err := x.Export(context.Background(), 42)
	require.NoError(t, err)

	assert.Regexp(t, keyPattern, res.Key)
	assert.Equal(t, "https://bucket/signed", res.URL)
	assert.Equal(t, fixed.Add(15*time.Minute), res.ExpiresAt)
	assert.True(t, bytes.HasPrefix(svc.uploaded, []byte("%PDF-")))
	svc.AssertExpectations(t)
}

func TestExportRemovesUploadWhenPresignFails(t *testing.T) {
	svc := &mockStorage{}
	svc.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc.On("PresignDownload", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("signer down"))
	svc.On("Delete", mock.Anything, mock.Anything).Return(nil)

	x := NewExporter(seededStore(t), svc, 0)
	_, err := x.Export(context.Background(), 42)
	assert.ErrorContains(t, err, "signer down")
	svc.AssertCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestExportUploadFailure(t *testing.T) {
	svc := &mockStorage{}
	svc.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket full"))

	x := NewExporter(seededStore(t), svc, 0)
	_, err := x.Export(context.Background(), 42)
	assert.ErrorContains(t, err, "bucket full")
	svc.AssertNotCalled(t, "PresignDownload", mock.Anything, mock.Anything, mock.Anything)
}

func TestFitTransform(t *testing.T) {
	empty := fitTransform(nil)
	assert.Equal(t, 1.0, empty.Scale)

	small := fitTransform([]canvas.Item{{ID: 1, Shape: shape.NewRect(10, 10, 100, 50)}})
	assert.Equal(t, 1.0, small.Scale, "small drawings keep their size")
	center := small.ToScreen(shape.Pt(60, 35))
	assert.InDelta(t, pageWidth/2, center.X, 1e-9)

	huge := fitTransform([]canvas.Item{{ID: 1, Shape: shape.NewLine(-5000, 0, 5000, 10)}})
	assert.Less(t, huge.Scale, 1.0)
	left := huge.ToScreen(shape.Pt(-5000, 0))
	right := huge.ToScreen(shape.Pt(5000, 0))
	assert.InDelta(t, pageMargin, left.X, 1e-6)
	assert.InDelta(t, pageWidth-pageMargin, right.X, 1e-6)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want rgba
	}{
		{"#000000", rgba{0, 0, 0, 1}},
		{"#fff", rgba{255, 255, 255, 1}},
		{"#FF8000", rgba{255, 128, 0, 1}},
		{"#ff000080", rgba{255, 0, 0, 128.0 / 255}},
		{"rgb(1, 2, 3)", rgba{1, 2, 3, 1}},
		{"rgba(0,0,0,0)", rgba{0, 0, 0, 0}},
		{"rgba(10,20,30,0.25)", rgba{10, 20, 30, 0.25}},
		{"Transparent", rgba{0, 0, 0, 0}},
		{"white", rgba{255, 255, 255, 1}},
		{" hsl(0, 100%, 50%) ", rgba{255, 0, 0, 1}},
	}
	for _, tt := range tests {
		got, err := parseColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, [3]int{tt.want.R, tt.want.G, tt.want.B}, [3]int{got.R, got.G, got.B}, tt.in)
		assert.InDelta(t, tt.want.A, got.A, 1e-6, tt.in)
	}

	for _, bad := range []string{"", "#12", "#gggggg", "not-a-color"} {
		_, err := parseColor(bad)
		assert.Error(t, err, bad)
	}
}
