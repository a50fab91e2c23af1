package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coverJPEG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 80, 120))
	for y := 0; y < 120; y++ {
		for x := 0; x < 80; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: uint8(y), B: uint8(x), A: 255}) //#nosec G115
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func epubBytes() []byte {
	// Starts with the ZIP local file header signature.
	return []byte{0x50, 0x4B, 0x03, 0x04, 0x00, 0x00, 0x00, 0x00}
}

func TestUploadAndGetCover(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	adminTok := ts.adminToken(t, "admin-cover")
	book := ts.createTestBook(t, "Dune", "Frank Herbert")

	cover := coverJPEG(t)
	resp := ts.api.Put("/api/v1/books/"+book.ID+"/cover",
		bytes.NewReader(cover),
		bearer(adminTok))
	require.Equal(t, http.StatusOK, resp.Code, "upload failed: %s", resp.Body.String())

	var envelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.HasCover)
	assert.NotEmpty(t, envelope.Data.CoverBlurHash)

	readerTok := ts.userToken(t, "user-cover")
	resp = ts.api.Get("/api/v1/books/"+book.ID+"/cover", bearer(readerTok))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "image/jpeg", resp.Header().Get("Content-Type"))
	assert.Equal(t, cover, resp.Body.Bytes())
}

func TestUploadCover_RejectsNonImage(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	adminTok := ts.adminToken(t, "admin-cover-bad")
	book := ts.createTestBook(t, "Dune", "Frank Herbert")

	resp := ts.api.Put("/api/v1/books/"+book.ID+"/cover",
		bytes.NewReader([]byte("plain text, not an image")),
		bearer(adminTok))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUploadCover_RegularUserForbidden(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.userToken(t, "user-cover-push")
	book := ts.createTestBook(t, "Dune", "Frank Herbert")

	resp := ts.api.Put("/api/v1/books/"+book.ID+"/cover",
		bytes.NewReader(coverJPEG(t)),
		bearer(token))
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestGetCover_NoneStored(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.userToken(t, "user-cover-missing")
	book := ts.createTestBook(t, "Dune", "Frank Herbert")

	resp := ts.api.Get("/api/v1/books/"+book.ID+"/cover", bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUploadAndGetEpub(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	adminTok := ts.adminToken(t, "admin-epub")
	book := ts.createTestBook(t, "Dune", "Frank Herbert")

	data := epubBytes()
	resp := ts.api.Put("/api/v1/books/"+book.ID+"/file",
		bytes.NewReader(data),
		bearer(adminTok))
	require.Equal(t, http.StatusOK, resp.Code, "upload failed: %s", resp.Body.String())

	var envelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.HasFile)

	readerTok := ts.userToken(t, "user-epub")
	resp = ts.api.Get("/api/v1/books/"+book.ID+"/file", bearer(readerTok))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, epubContentType, resp.Header().Get("Content-Type"))
	assert.Equal(t, data, resp.Body.Bytes())
}

func TestUploadEpub_RejectsNonZip(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	adminTok := ts.adminToken(t, "admin-epub-bad")
	book := ts.createTestBook(t, "Dune", "Frank Herbert")

	resp := ts.api.Put("/api/v1/books/"+book.ID+"/file",
		bytes.NewReader([]byte("not an epub")),
		bearer(adminTok))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
