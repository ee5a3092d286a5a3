package integrity

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"iiif-presentation/core/storage/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T) (*fiber.App, *mocks.Client, sqlmock.Sqlmock) {
	app := fiber.New()
	mockClient := new(mocks.Client)
	db, sqlMock := setupMockDB(t)
	svc := NewService(mockClient, testCfg, db, zap.NewNop())
	NewHandler(svc).RegisterRoutes(app)
	return app, mockClient, sqlMock
}

func decode(t *testing.T, app *fiber.App, target string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", target, nil), 2000)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHandleStructureCheck(t *testing.T) {
	app, mockClient, _ := setupTestApp(t)

	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(mocks.Listing())

	status, body := decode(t, app, "/integrity/structure")
	assert.Equal(t, 200, status)
	assert.Equal(t, "checked", body["status"])
	assert.NotEmpty(t, body["missing"])
	mockClient.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleStructureCheck_Fix(t *testing.T) {
	app, mockClient, _ := setupTestApp(t)

	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, nil)
	mockClient.On("MakeBucket", mock.Anything, "test-bucket", mock.Anything).Return(nil)
	mockClient.On("PutObject", mock.Anything, "test-bucket", "staging/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

	status, body := decode(t, app, "/integrity/structure?fix=true")
	assert.Equal(t, 200, status)
	assert.Equal(t, "fixed", body["status"])
	mockClient.AssertExpectations(t)
}

func TestHandleStructureCheck_Error(t *testing.T) {
	app, mockClient, _ := setupTestApp(t)
	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, assert.AnError)

	status, body := decode(t, app, "/integrity/structure")
	assert.Equal(t, 500, status)
	assert.NotEmpty(t, body["error"])
}

func TestHandleSchemaCheck(t *testing.T) {
	app, _, sqlMock := setupTestApp(t)

	columns := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("id", "varchar(64)", "NO", "PRI", nil, "")
	sqlMock.ExpectQuery("SHOW COLUMNS FROM `manifests`").WillReturnRows(columns)
	sqlMock.ExpectQuery("SHOW COLUMNS FROM").WillReturnError(assert.AnError)
	sqlMock.ExpectQuery("SHOW COLUMNS FROM").WillReturnError(assert.AnError)
	sqlMock.ExpectQuery("SHOW COLUMNS FROM").WillReturnError(assert.AnError)

	status, body := decode(t, app, "/integrity/schema")
	assert.Equal(t, 200, status)
	assert.Equal(t, false, body["matched"])
	assert.Len(t, body["errors"], 3)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestHandleMirrorCheck_Fix(t *testing.T) {
	app, mockClient, sqlMock := setupTestApp(t)

	sqlMock.ExpectQuery("SELECT .* FROM `manifests`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id"}).AddRow("m1", 7))

	mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).
		Return([]string{"staging/7/manifests/stale.json"})
	mockClient.On("RemoveObject", mock.Anything, "test-bucket", "staging/7/manifests/stale.json", mock.Anything).Return(nil)

	status, body := decode(t, app, "/integrity/mirror?fix=true")
	assert.Equal(t, 200, status)
	assert.Empty(t, body["orphaned"])
	assert.Len(t, body["missing"], 1)
	mockClient.AssertExpectations(t)
}

func TestHandleIntegrityCheck(t *testing.T) {
	app, mockClient, sqlMock := setupTestApp(t)

	// Fail fast everywhere; the combined report still answers 200.
	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, assert.AnError)
	mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(mocks.Listing())
	for i := 0; i < 5; i++ {
		sqlMock.ExpectQuery(".*").WillReturnError(assert.AnError)
	}

	status, body := decode(t, app, "/integrity")
	assert.Equal(t, 200, status)
	assert.Contains(t, body, "structure")
	assert.Contains(t, body, "schema")
	assert.Contains(t, body, "mirror")

	mirror, ok := body["mirror"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "error", mirror["status"])
}
