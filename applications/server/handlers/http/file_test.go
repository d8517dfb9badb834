package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/venturelink/fileserve/applications/server/adapters/inmemory"
	"github.com/venturelink/fileserve/applications/server/config"
	"github.com/venturelink/fileserve/applications/server/services"
)

type testEnv struct {
	router   http.Handler
	blobs    *inmemory.BlobStore
	profiles *inmemory.ProfileStore
	dir      string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	logger := log.NewNopLogger()
	blobs := inmemory.NewBlobStore(logger)
	profiles := inmemory.NewProfileStore()
	svc := services.NewService(blobs, profiles, logger)
	dir := t.TempDir()

	upload := config.Upload{MaxFileSize: 1 << 20, MaxFilesPerField: 2, Dir: dir}

	return testEnv{
		router:   NewRouter(svc, upload, logger),
		blobs:    blobs,
		profiles: profiles,
		dir:      dir,
	}
}

func TestUploadAndFetchRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	userID := primitive.NewObjectID().Hex()
	env.profiles.AddUser(userID)

	content := "profile picture bytes"
	req := multipartRequest(t,
		map[string]string{"documentType": "profile_picture"},
		[]formFile{{field: "generalAttachments", name: "me.png", content: content}},
	)
	req.Header.Set("X-User-Id", userID)
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created["_id"]
	require.NotEmpty(t, id)

	// The user document now references the new blob.
	user, ok := env.profiles.User(userID)
	require.True(t, ok)
	assert.Equal(t, id, user.ProfilePictureFileID)

	// Temp files never outlive the request.
	assert.Empty(t, dirEntries(t, env.dir))

	// Read back byte-identical content with the original MIME type.
	getRec := httptest.NewRecorder()
	env.router.ServeHTTP(getRec, httptest.NewRequest(http.MethodGet, "/files/"+id, nil))

	require.Equal(t, http.StatusOK, getRec.Code)
	assert.Equal(t, content, getRec.Body.String())
	assert.Equal(t, "application/octet-stream", getRec.Header().Get("Content-Type"))
}

func TestGetFileInfo(t *testing.T) {
	env := newTestEnv(t)

	req := multipartRequest(t, nil,
		[]formFile{{field: "generalAttachments", name: "deck.pdf", content: "12345"}})
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	infoRec := httptest.NewRecorder()
	env.router.ServeHTTP(infoRec,
		httptest.NewRequest(http.MethodGet, "/files/info/"+created["_id"], nil))

	require.Equal(t, http.StatusOK, infoRec.Code)

	var info struct {
		ID        string `json:"_id"`
		Filename  string `json:"filename"`
		Length    int64  `json:"length"`
		ChunkSize int32  `json:"chunkSize"`
	}
	require.NoError(t, json.Unmarshal(infoRec.Body.Bytes(), &info))
	assert.Equal(t, created["_id"], info.ID)
	assert.Equal(t, "deck.pdf", info.Filename)
	assert.Equal(t, int64(5), info.Length)
	assert.NotZero(t, info.ChunkSize)
}

func TestFetchFile_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/files/"+primitive.NewObjectID().Hex(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetFileInfo_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/files/info/"+primitive.NewObjectID().Hex(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadFile_NoFile(t *testing.T) {
	env := newTestEnv(t)

	req := multipartRequest(t, map[string]string{"documentType": "logo"}, nil)
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no file uploaded")
	assert.Equal(t, 0, env.blobs.Len())
}

func TestUploadFile_RejectedRequestStoresNothing(t *testing.T) {
	env := newTestEnv(t)

	// Three files under one field with a limit of two: the whole request
	// fails and none of the parts reaches the blob store.
	req := multipartRequest(t, nil, []formFile{
		{field: "fileSearchAttachments", name: "a.txt", content: "a"},
		{field: "fileSearchAttachments", name: "b.txt", content: "b"},
		{field: "fileSearchAttachments", name: "c.txt", content: "c"},
	})
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, env.blobs.Len())
	assert.Empty(t, dirEntries(t, env.dir))
}

func TestUploadFile_OwnerPatchFailure(t *testing.T) {
	env := newTestEnv(t)

	req := multipartRequest(t,
		map[string]string{"documentType": "profile_picture"},
		[]formFile{{field: "generalAttachments", name: "me.png", content: "x"}},
	)
	// Unknown user: the blob write succeeds but the owner patch fails.
	req.Header.Set("X-User-Id", primitive.NewObjectID().Hex())
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
	// Temp files are cleaned up regardless of which half failed.
	assert.Empty(t, dirEntries(t, env.dir))
}
