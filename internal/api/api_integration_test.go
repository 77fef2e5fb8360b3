// internal/api/api_integration_test.go
package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "bike-wallet/internal"
	"bike-wallet/internal/domain"
)

// testApp is the global application instance for testing. It stays nil unless
// WALLET_INTEGRATION=1, in which case a real Postgres is required.
var testApp *app.Application

// testServer is the httptest server.
var testServer *httptest.Server

// TestMain is the special entry point for Go tests, executed once before all tests.
func TestMain(m *testing.M) {
	if os.Getenv("WALLET_INTEGRATION") != "1" {
		os.Exit(m.Run())
	}

	// 1. Set up environment variables (ensure DB_NAME points to the test database).
	setupEnvVars()

	// 2. Initialize the application.
	testApp = app.NewApplication()
	if err := testApp.Initialize(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize test application: %v\n", err)
		os.Exit(1)
	}

	// 3. Start an httptest server to test the HTTP handling layer.
	testServer = httptest.NewServer(testApp.HTTPHandler)

	// 4. Run all tests.
	code := m.Run()
	testServer.Close()

	// 5. Shut down application resources after tests (e.g., database connections).
	if err := testApp.Shutdown(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shutdown test application: %v\n", err)
		os.Exit(1)
	}

	os.Exit(code)
}

// setupEnvVars helper function: sets database environment variables required for testing.
func setupEnvVars() {
	defaults := map[string]string{
		"DB_HOST":     "localhost",
		"DB_PORT":     "5432",
		"DB_USER":     "user",
		"DB_PASSWORD": "password",
		"DB_NAME":     "walletdb_test",
		"DB_SSLMODE":  "disable",
		"LOG_LEVEL":   "error",
	}
	for key, value := range defaults {
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

func requireIntegration(t *testing.T) {
	t.Helper()
	if testApp == nil {
		t.Skip("set WALLET_INTEGRATION=1 to run against Postgres")
	}
}

// clearDatabase truncates all wallet tables so each test starts clean.
func clearDatabase(t *testing.T) {
	_, err := testApp.DB.Exec("TRUNCATE TABLE wallet_transactions, wallets, clients RESTART IDENTITY CASCADE;")
	require.NoError(t, err, "Failed to truncate tables")
}

// createTestClient registers a client through the API. Phone numbers are unique,
// so each one is derived from the id.
func createTestClient(t *testing.T, clientID string) {
	body := fmt.Sprintf(`{"id": %q, "fullName": %q, "phoneNumber": %q}`, clientID, "Test Rider "+clientID, "+2519-"+clientID)
	resp, payload := makeRequest(t, http.MethodPost, "/clients", strings.NewReader(body))
	require.Equal(t, http.StatusCreated, resp.StatusCode, payload["msg"])
}

// makeRequest helper function: sends an HTTP request to the test server.
func makeRequest(t *testing.T, method, path string, body io.Reader) (*http.Response, map[string]interface{}) {
	req, err := http.NewRequest(method, testServer.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp, payload
}

func moneyBody(clientID string, amount string) io.Reader {
	return strings.NewReader(fmt.Sprintf(`{"clientId": %q, "amount": %q}`, clientID, amount))
}

func transactionsOf(t *testing.T, payload map[string]interface{}) []interface{} {
	data := payload["data"].(map[string]interface{})
	transactions, ok := data["transactions"].([]interface{})
	require.True(t, ok, "response carries no transaction history")
	return transactions
}

func balanceOf(t *testing.T, payload map[string]interface{}) decimal.Decimal {
	data := payload["data"].(map[string]interface{})
	balance, err := decimal.NewFromString(data["balance"].(string))
	require.NoError(t, err)
	return balance
}

func TestRegisterClientIntegration(t *testing.T) {
	requireIntegration(t)
	clearDatabase(t)

	resp, payload := makeRequest(t, http.MethodPost, "/clients", strings.NewReader(`{"fullName":"Sara Tesfaye","phoneNumber":"0911000001"}`))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	clientID := payload["data"].(map[string]interface{})["id"].(string)
	assert.NotEmpty(t, clientID)

	resp, payload = makeRequest(t, http.MethodPost, "/clients", strings.NewReader(`{"fullName":"Other Rider","phoneNumber":"0911000001"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, payload["msg"], "Phone number is already in use")

	resp, payload = makeRequest(t, http.MethodGet, "/clients/"+clientID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Sara Tesfaye", payload["data"].(map[string]interface{})["full_name"])

	// A registered client can open a wallet straight away.
	resp, _ = makeRequest(t, http.MethodPost, "/wallet/add/"+clientID, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCreateWalletIntegration(t *testing.T) {
	requireIntegration(t)
	clearDatabase(t)
	createTestClient(t, "rider-1")

	resp, payload := makeRequest(t, http.MethodPost, "/wallet/add/rider-1", nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, payload["success"])
	assert.True(t, balanceOf(t, payload).IsZero())

	resp, payload = makeRequest(t, http.MethodPost, "/wallet/add", strings.NewReader(`{"clientId":"rider-1"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Wallet already exists for this client", payload["msg"])

	resp, _ = makeRequest(t, http.MethodPost, "/wallet/add/nobody", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDepositAndPaymentIntegration(t *testing.T) {
	requireIntegration(t)
	clearDatabase(t)
	createTestClient(t, "rider-2")
	resp, _ := makeRequest(t, http.MethodPost, "/wallet/add/rider-2", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("Deposit", func(t *testing.T) {
		resp, payload := makeRequest(t, http.MethodPost, "/wallet/deposit", moneyBody("rider-2", "100.00"))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Deposit successful", payload["message"])
		assert.True(t, decimal.NewFromInt(100).Equal(balanceOf(t, payload)))

		transactions := transactionsOf(t, payload)
		require.Len(t, transactions, 1)
		assert.Equal(t, "Deposit", transactions[0].(map[string]interface{})["type"])
	})

	t.Run("AmountFinerThanStorage", func(t *testing.T) {
		resp, _ := makeRequest(t, http.MethodPost, "/wallet/deposit", moneyBody("rider-2", "0.00005"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		_, wallet := makeRequest(t, http.MethodGet, "/wallet/rider-2", nil)
		assert.True(t, decimal.NewFromInt(100).Equal(balanceOf(t, wallet)))
		assert.Len(t, transactionsOf(t, wallet), 1)
	})

	t.Run("NonPositiveDeposit", func(t *testing.T) {
		resp, payload := makeRequest(t, http.MethodPost, "/wallet/deposit", moneyBody("rider-2", "0"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, false, payload["success"])
	})

	t.Run("Payment", func(t *testing.T) {
		resp, payload := makeRequest(t, http.MethodPost, "/wallet/payment", moneyBody("rider-2", "30"))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, decimal.NewFromInt(70).Equal(balanceOf(t, payload)))

		transactions := transactionsOf(t, payload)
		require.Len(t, transactions, 2)
		last := transactions[1].(map[string]interface{})
		assert.Equal(t, "Payment", last["type"])
		amount, err := decimal.NewFromString(last["amount"].(string))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(30).Equal(amount))
	})

	t.Run("Overdraft", func(t *testing.T) {
		resp, payload := makeRequest(t, http.MethodPost, "/wallet/payment", moneyBody("rider-2", "1000"))
		assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
		assert.Equal(t, "Insufficient balance", payload["msg"])

		_, wallet := makeRequest(t, http.MethodGet, "/wallet/rider-2", nil)
		assert.True(t, decimal.NewFromInt(70).Equal(balanceOf(t, wallet)))
	})

	t.Run("UnknownWallet", func(t *testing.T) {
		resp, _ := makeRequest(t, http.MethodPost, "/wallet/deposit", moneyBody("ghost", "5"))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

// TestTransactionHistoryAndBalanceConsistency tests transaction history and balance consistency.
func TestTransactionHistoryAndBalanceConsistency(t *testing.T) {
	requireIntegration(t)
	clearDatabase(t)
	createTestClient(t, "rider-3")
	makeRequest(t, http.MethodPost, "/wallet/add/rider-3", nil)

	makeRequest(t, http.MethodPost, "/wallet/deposit", moneyBody("rider-3", "500"))
	makeRequest(t, http.MethodPost, "/wallet/payment", moneyBody("rider-3", "150"))
	makeRequest(t, http.MethodPost, "/wallet/deposit", moneyBody("rider-3", "200"))

	// 0 + 500 - 150 + 200
	expectedFinalBalance := decimal.NewFromInt(550)

	resp, wallet := makeRequest(t, http.MethodGet, "/wallet/rider-3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	currentBalance := balanceOf(t, wallet)
	assert.True(t, expectedFinalBalance.Equal(currentBalance))

	resp, history := makeRequest(t, http.MethodGet, "/wallet/rider-3/transactions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	transactionsData := history["data"].([]interface{})
	require.Len(t, transactionsData, 3)

	resp, paged := makeRequest(t, http.MethodGet, "/wallet/rider-3/transactions?limit=2&offset=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := paged["data"].(map[string]interface{})
	assert.Len(t, page["data"], 2)
	assert.Equal(t, float64(3), page["total_count"])

	calculated := decimal.Zero
	for i, txInterface := range transactionsData {
		txMap := txInterface.(map[string]interface{})
		amount, err := decimal.NewFromString(txMap["amount"].(string))
		require.NoError(t, err)

		switch domain.TransactionType(txMap["type"].(string)) {
		case domain.TransactionTypeDeposit:
			calculated = calculated.Add(amount)
		case domain.TransactionTypePayment:
			calculated = calculated.Sub(amount)
		default:
			t.Fatalf("unexpected transaction type at %d: %v", i, txMap["type"])
		}
	}
	assert.Equal(t, "Payment", transactionsData[1].(map[string]interface{})["description"])
	assert.True(t, currentBalance.Equal(calculated), "Balance derived from history should match current balance")
}

func TestConcurrentPaymentsIntegration(t *testing.T) {
	requireIntegration(t)
	clearDatabase(t)
	createTestClient(t, "rider-4")
	makeRequest(t, http.MethodPost, "/wallet/add/rider-4", nil)
	makeRequest(t, http.MethodPost, "/wallet/deposit", moneyBody("rider-4", "10"))

	const workers = 25
	var wg sync.WaitGroup
	var mu sync.Mutex
	statuses := map[int]int{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, _ := makeRequest(t, http.MethodPost, "/wallet/payment", moneyBody("rider-4", "1"))
			mu.Lock()
			statuses[resp.StatusCode]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, statuses[http.StatusOK])
	assert.Equal(t, workers-10, statuses[http.StatusPaymentRequired])

	_, wallet := makeRequest(t, http.MethodGet, "/wallet/rider-4", nil)
	assert.True(t, balanceOf(t, wallet).IsZero())
}

func TestDeleteWalletIntegration(t *testing.T) {
	requireIntegration(t)
	clearDatabase(t)
	createTestClient(t, "rider-5")
	makeRequest(t, http.MethodPost, "/wallet/add/rider-5", nil)
	makeRequest(t, http.MethodPost, "/wallet/deposit", moneyBody("rider-5", "15"))

	resp, payload := makeRequest(t, http.MethodDelete, "/wallet/rider-5", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["success"])

	resp, _ = makeRequest(t, http.MethodGet, "/wallet/rider-5", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = makeRequest(t, http.MethodDelete, "/wallet/rider-5", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
