package leadimport

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-oms/meridian-oms/internal/masterdata/cities"
	"github.com/meridian-oms/meridian-oms/internal/masterdata/products"
	"github.com/meridian-oms/meridian-oms/internal/sales/customers"
	"github.com/meridian-oms/meridian-oms/internal/sales/orders"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	products map[string]products.Product
	cities   map[string]cities.City
	handlers map[int64]bool

	customers      []customers.Customer
	nextCustomerID int64
	orders         []orders.Order
	nextOrderID    int64
	items          []orders.OrderItem
	nextItemID     int64

	// Error injection
	txError           error
	createCustomerErr error
	createOrderErr    error
	createItemErr     error
}

func newMockRepository() *mockRepository {
	m := &mockRepository{
		products:       make(map[string]products.Product),
		cities:         make(map[string]cities.City),
		handlers:       map[int64]bool{7: true, 8: true, 9: true},
		nextCustomerID: 1,
		nextOrderID:    1,
		nextItemID:     1,
	}
	m.products["SKU1"] = products.Product{ID: 11, Code: "SKU1", Name: "Herbal Hair Oil", Price: decimal.RequireFromString("1200.00"), IsActive: true}
	m.cities["Colombo"] = cities.City{ID: 21, Name: "Colombo", IsActive: true}
	m.cities["Kandy"] = cities.City{ID: 22, Name: "Kandy", IsActive: true}
	return m
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if m.txError != nil {
		return m.txError
	}
	return fn(ctx, m)
}

type mockSnapshot struct {
	customers      []customers.Customer
	nextCustomerID int64
	orders         []orders.Order
	nextOrderID    int64
	items          []orders.OrderItem
	nextItemID     int64
}

func (m *mockRepository) WithSavepoint(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snap := mockSnapshot{
		customers:      append([]customers.Customer(nil), m.customers...),
		nextCustomerID: m.nextCustomerID,
		orders:         append([]orders.Order(nil), m.orders...),
		nextOrderID:    m.nextOrderID,
		items:          append([]orders.OrderItem(nil), m.items...),
		nextItemID:     m.nextItemID,
	}
	if err := fn(ctx, m); err != nil {
		m.customers = snap.customers
		m.nextCustomerID = snap.nextCustomerID
		m.orders = snap.orders
		m.nextOrderID = snap.nextOrderID
		m.items = snap.items
		m.nextItemID = snap.nextItemID
		return err
	}
	return nil
}

func (m *mockRepository) CountActiveHandlers(ctx context.Context, ids []int64) (int, error) {
	count := 0
	for _, id := range ids {
		if m.handlers[id] {
			count++
		}
	}
	return count, nil
}

func (m *mockRepository) GetActiveProductByCode(ctx context.Context, code string) (products.Product, error) {
	p, ok := m.products[code]
	if !ok || !p.IsActive {
		return products.Product{}, ErrNotFound
	}
	return p, nil
}

func (m *mockRepository) GetActiveCityByName(ctx context.Context, name string) (cities.City, error) {
	c, ok := m.cities[name]
	if !ok || !c.IsActive {
		return cities.City{}, ErrNotFound
	}
	return c, nil
}

func (m *mockRepository) FindCustomersByPhoneOrEmail(ctx context.Context, phone, email string) ([]customers.Customer, error) {
	byEmail := email != "" && email != customers.EmailNone
	var result []customers.Customer
	for _, c := range m.customers {
		if c.Phone == phone || (byEmail && c.Email == email) {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockRepository) CreateCustomer(ctx context.Context, c customers.Customer) (int64, error) {
	if m.createCustomerErr != nil {
		return 0, m.createCustomerErr
	}
	for _, existing := range m.customers {
		if existing.Phone == c.Phone {
			return 0, ErrCustomerConflict
		}
	}
	c.ID = m.nextCustomerID
	m.nextCustomerID++
	m.customers = append(m.customers, c)
	return c.ID, nil
}

func (m *mockRepository) CreateOrder(ctx context.Context, o orders.Order) (int64, error) {
	if m.createOrderErr != nil {
		return 0, m.createOrderErr
	}
	o.ID = m.nextOrderID
	m.nextOrderID++
	m.orders = append(m.orders, o)
	return o.ID, nil
}

func (m *mockRepository) CreateOrderItem(ctx context.Context, it orders.OrderItem) (int64, error) {
	if m.createItemErr != nil {
		return 0, m.createItemErr
	}
	it.ID = m.nextItemID
	m.nextItemID++
	m.items = append(m.items, it)
	return it.ID, nil
}

// ============================================================================
// HELPERS
// ============================================================================

const leadHeader = "Full Name,Phone Number,City,Email,Address Line 1,Address Line 2,Product Code,Total Amount,Other"

func leadFile(rows ...string) string {
	return leadHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

func newTestService(repo Repository) *Service {
	logger := slog.New(slog.NewTextHandler(testWriter{}, nil))
	return NewService(repo, logger, func() *rand.Rand {
		return rand.New(rand.NewSource(1))
	})
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func runImport(t *testing.T, repo *mockRepository, file string, handlerIDs ...int64) (*ImportOutcome, error) {
	t.Helper()
	if handlerIDs == nil {
		handlerIDs = []int64{7, 8}
	}
	svc := newTestService(repo)
	return svc.Import(context.Background(), ImportRequest{
		Reader:     strings.NewReader(file),
		ImporterID: 42,
		HandlerIDs: handlerIDs,
	})
}

// ============================================================================
// SCHEMA VALIDATION
// ============================================================================

func TestImportRejectsMissingColumn(t *testing.T) {
	repo := newMockRepository()
	file := "Full Name,Phone Number,City,Email,Address Line 1,Address Line 2,Product Code,Total Amount\n"

	_, err := runImport(t, repo, file)

	require.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Empty(t, repo.orders)
}

func TestImportRejectsReorderedColumns(t *testing.T) {
	repo := newMockRepository()
	file := "Phone Number,Full Name,City,Email,Address Line 1,Address Line 2,Product Code,Total Amount,Other\n" +
		"Jane Doe,0771234567,Colombo,,12 Lane,,SKU1,1500.00,\n"

	_, err := runImport(t, repo, file)

	require.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Empty(t, repo.orders)
}

func TestImportRejectsExtraColumn(t *testing.T) {
	repo := newMockRepository()
	file := leadHeader + ",Extra\n"

	_, err := runImport(t, repo, file)

	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestImportAcceptsHeaderCaseAndWhitespaceVariants(t *testing.T) {
	repo := newMockRepository()
	file := " full name , PHONE   NUMBER ,city, Email ,address line 1,Address Line 2,product CODE,total amount,OTHER\n" +
		"Jane Doe,0771234567,Colombo,jane@x.com,12 Lane,,SKU1,1500.00,gift\n"

	outcome, err := runImport(t, repo, file)

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.SuccessCount)
	assert.Equal(t, 0, outcome.ErrorCount)
}

func TestImportStripsByteOrderMark(t *testing.T) {
	repo := newMockRepository()
	file := "\xEF\xBB\xBF" + leadFile("Jane Doe,0771234567,Colombo,jane@x.com,12 Lane,,SKU1,1500.00,")

	outcome, err := runImport(t, repo, file)

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.SuccessCount)
}

func TestImportRejectsEmptyFile(t *testing.T) {
	repo := newMockRepository()

	_, err := runImport(t, repo, "")

	require.ErrorIs(t, err, ErrEmptyFile)
}

// ============================================================================
// HANDLER SET VALIDATION
// ============================================================================

func TestImportRejectsEmptyHandlerSet(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	_, err := svc.Import(context.Background(), ImportRequest{
		Reader:     strings.NewReader(leadFile("Jane Doe,0771234567,Colombo,,12 Lane,,SKU1,1500.00,")),
		ImporterID: 42,
	})

	require.ErrorIs(t, err, ErrNoHandlers)
	assert.Empty(t, repo.orders)
}

func TestImportRejectsInactiveHandler(t *testing.T) {
	repo := newMockRepository()
	repo.handlers[99] = false

	_, err := runImport(t, repo, leadFile("Jane Doe,0771234567,Colombo,,12 Lane,,SKU1,1500.00,"), 7, 99)

	require.ErrorIs(t, err, ErrInvalidHandlers)
	assert.Empty(t, repo.orders)
}

func TestImportAssignsHandlersFromPoolOnly(t *testing.T) {
	repo := newMockRepository()
	rows := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		phone := "07712345" + string(rune('0'+i%10)) + string(rune('0'+i/10))
		rows = append(rows, "Customer "+phone+","+phone+",Colombo,,12 Lane,,SKU1,1500.00,")
	}

	outcome, err := runImport(t, repo, leadFile(rows...), 7, 8, 9)

	require.NoError(t, err)
	require.Equal(t, 20, outcome.SuccessCount)
	seen := map[int64]bool{}
	for _, o := range repo.orders {
		seen[o.AssignedTo] = true
		assert.Contains(t, []int64{7, 8, 9}, o.AssignedTo)
	}
	// A seeded source over 20 rows reaches more than one pool member.
	assert.Greater(t, len(seen), 1)
}

func TestImportSingleHandlerPoolAssignsEveryRow(t *testing.T) {
	repo := newMockRepository()
	file := leadFile(
		"Jane Doe,0771234567,Colombo,,12 Lane,,SKU1,1500.00,",
		"John Roe,0719876543,Kandy,,3 Hill St,,SKU1,2000.00,",
	)

	outcome, err := runImport(t, repo, file, 7)

	require.NoError(t, err)
	require.Equal(t, 2, outcome.SuccessCount)
	for _, o := range repo.orders {
		assert.Equal(t, int64(7), o.AssignedTo)
	}
}

// ============================================================================
// ROW PROCESSING
// ============================================================================

func TestImportMaterializesOrderWithFixedDefaults(t *testing.T) {
	repo := newMockRepository()
	file := leadFile(`Jane Doe,0771234567,Colombo,jane@x.com,12 Lane,,SKU1,1500.00,gift`)

	outcome, err := runImport(t, repo, file)

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.SuccessCount)
	assert.Equal(t, 0, outcome.ErrorCount)

	require.Len(t, repo.customers, 1)
	c := repo.customers[0]
	assert.Equal(t, "Jane Doe", c.Name)
	assert.Equal(t, "jane@x.com", c.Email)
	assert.Equal(t, int64(21), c.CityID)
	assert.Equal(t, int64(42), c.CreatedBy)

	require.Len(t, repo.orders, 1)
	o := repo.orders[0]
	assert.Equal(t, c.ID, o.CustomerID)
	assert.Equal(t, int64(42), o.CreatedBy)
	assert.NotEqual(t, o.CreatedBy, o.AssignedTo, "importer identity is recorded separately from the assigned handler")
	assert.Equal(t, orders.OrderStatusPending, o.Status)
	assert.Equal(t, orders.PaymentStatusUnpaid, o.PaymentStatus)
	assert.Equal(t, DefaultCurrency, o.Currency)
	assert.Equal(t, ChannelLeads, o.Channel)
	assert.Equal(t, "gift", o.Notes)
	assert.Equal(t, "Jane Doe", o.CustomerName)
	assert.Equal(t, "0771234567", o.CustomerPhone)
	assert.Equal(t, "12 Lane", o.Address)
	assert.Equal(t, "Colombo", o.CityName)
	assert.WithinDuration(t, o.IssueDate.AddDate(0, 0, DefaultDueDays), o.DueDate, time.Second)

	require.Len(t, repo.items, 1)
	it := repo.items[0]
	assert.Equal(t, o.ID, it.OrderID)
	assert.Equal(t, int64(11), it.ProductID)
	assert.Equal(t, DefaultQuantity, it.Quantity)
	assert.True(t, it.Price.Equal(decimal.RequireFromString("1500.00")), "declared amount wins over catalog price")
	assert.True(t, it.Total.Equal(decimal.RequireFromString("1500.00")))
	assert.True(t, it.Discount.IsZero())
}

func TestImportDefaultsNoteWhenOtherBlank(t *testing.T) {
	repo := newMockRepository()

	outcome, err := runImport(t, repo, leadFile("Jane Doe,0771234567,Colombo,,12 Lane,,SKU1,1500.00,"))

	require.NoError(t, err)
	require.Equal(t, 1, outcome.SuccessCount)
	assert.Equal(t, DefaultNote, repo.orders[0].Notes)
}

func TestImportSkipsBlankRowsSilently(t *testing.T) {
	repo := newMockRepository()
	file := leadHeader + "\n" +
		",,,,,,,,\n" +
		"Jane Doe,0771234567,Colombo,,12 Lane,,SKU1,1500.00,\n" +
		" , , , , , , , , \n"

	outcome, err := runImport(t, repo, file)

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.SuccessCount)
	assert.Equal(t, 0, outcome.ErrorCount)
}

func TestImportReportsPhysicalLineNumbers(t *testing.T) {
	repo := newMockRepository()
	file := leadFile(
		"Jane Doe,0771234567,Colombo,,12 Lane,,SKU1,1500.00,",
		",0771111111,Colombo,,12 Lane,,SKU1,1500.00,",
	)

	outcome, err := runImport(t, repo, file)

	require.NoError(t, err)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, 3, outcome.Errors[0].Row)
	assert.Equal(t, []string{"Row 3: Full Name is required"}, outcome.Messages())
}

func TestImportRowValidationFailures(t *testing.T) {
	cases := []struct {
		name string
		row  string
		msg  string
	}{
		{"missing name", ",0771234567,Colombo,,12 Lane,,SKU1,1500.00,", "Full Name is required"},
		{"missing phone", "Jane Doe,,Colombo,,12 Lane,,SKU1,1500.00,", "Phone Number is required"},
		{"missing city", "Jane Doe,0771234567,,,12 Lane,,SKU1,1500.00,", "City is required"},
		{"missing product", "Jane Doe,0771234567,Colombo,,12 Lane,,,1500.00,", "Product Code is required"},
		{"missing amount", "Jane Doe,0771234567,Colombo,,12 Lane,,SKU1,,", "Total Amount is required"},
		{"bad phone", "Jane Doe,077*123,Colombo,,12 Lane,,SKU1,1500.00,", "Phone Number is invalid"},
		{"bad email", "Jane Doe,0771234567,Colombo,not-an-email,12 Lane,,SKU1,1500.00,", "Email is invalid"},
		{"negative amount", "Jane Doe,0771234567,Colombo,,12 Lane,,SKU1,-5,", "Total Amount must be a positive number"},
		{"zero amount", "Jane Doe,0771234567,Colombo,,12 Lane,,SKU1,0,", "Total Amount must be a positive number"},
		{"non-numeric amount", "Jane Doe,0771234567,Colombo,,12 Lane,,SKU1,abc,", "Total Amount must be a positive number"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMockRepository()
			outcome, err := runImport(t, repo, leadFile(tc.row))

			require.NoError(t, err)
			assert.Equal(t, 0, outcome.SuccessCount)
			require.Len(t, outcome.Errors, 1)
			assert.Equal(t, tc.msg, outcome.Errors[0].Message)
			assert.Empty(t, repo.orders, "failed rows must not write")
			assert.Empty(t, repo.customers)
		})
	}
}

func TestImportUnknownProductCode(t *testing.T) {
	repo := newMockRepository()

	outcome, err := runImport(t, repo, leadFile("Jane Doe,0771234567,Colombo,,12 Lane,,NOPE,1500.00,"))

	require.NoError(t, err)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, "Product code not found or inactive", outcome.Errors[0].Message)
	assert.Empty(t, repo.orders)
}

func TestImportUnknownCity(t *testing.T) {
	repo := newMockRepository()

	outcome, err := runImport(t, repo, leadFile("Jane Doe,0771234567,Nowhereville,,12 Lane,,SKU1,1500.00,"))

	require.NoError(t, err)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, "City not found or inactive", outcome.Errors[0].Message)
	assert.Empty(t, repo.orders)
}

func TestImportCityMatchIsCaseSensitive(t *testing.T) {
	repo := newMockRepository()

	outcome, err := runImport(t, repo, leadFile("Jane Doe,0771234567,colombo,,12 Lane,,SKU1,1500.00,"))

	require.NoError(t, err)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, "City not found or inactive", outcome.Errors[0].Message)
}

func TestImportRowLevelContinue(t *testing.T) {
	repo := newMockRepository()
	file := leadFile(
		"Jane Doe,0771234567,Colombo,,12 Lane,,SKU1,1500.00,",
		"Bad Row,0770000000,Nowhereville,,1 St,,SKU1,100,",
		"John Roe,0719876543,Kandy,,3 Hill St,,SKU1,2000.00,",
	)

	outcome, err := runImport(t, repo, file)

	require.NoError(t, err)
	assert.Equal(t, 2, outcome.SuccessCount)
	assert.Equal(t, 1, outcome.ErrorCount)
	assert.Len(t, repo.orders, 2, "rows after a failure are still processed and persisted")
}

// ============================================================================
// CUSTOMER RESOLUTION
// ============================================================================

func existingJane() customers.Customer {
	return customers.Customer{
		ID:           1,
		Name:         "Jane Doe",
		Phone:        "0771234567",
		Email:        "jane@x.com",
		AddressLine1: "12 Lane",
		AddressLine2: "",
		CityID:       21,
	}
}

func TestImportReusesMatchingCustomer(t *testing.T) {
	repo := newMockRepository()
	repo.customers = append(repo.customers, existingJane())
	repo.nextCustomerID = 2

	outcome, err := runImport(t, repo, leadFile("Jane Doe,0771234567,Colombo,jane@x.com,12 Lane,,SKU1,1500.00,"))

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.SuccessCount)
	assert.Len(t, repo.customers, 1, "matching rows must not create a second customer")
	require.Len(t, repo.orders, 1)
	assert.Equal(t, int64(1), repo.orders[0].CustomerID)
}

func TestImportConflictOnNameMismatch(t *testing.T) {
	repo := newMockRepository()
	repo.customers = append(repo.customers, existingJane())

	outcome, err := runImport(t, repo, leadFile("Janet Doe,0771234567,Colombo,jane@x.com,12 Lane,,SKU1,1500.00,"))

	require.NoError(t, err)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, "Customer data mismatch with existing record", outcome.Errors[0].Message)
	assert.Empty(t, repo.orders)
}

func TestImportFindsCustomerByEmailWithDifferentPhone(t *testing.T) {
	repo := newMockRepository()
	repo.customers = append(repo.customers, existingJane())

	outcome, err := runImport(t, repo, leadFile("Jane Doe,0770000001,Colombo,jane@x.com,12 Lane,,SKU1,1500.00,"))

	require.NoError(t, err)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, "Customer data mismatch with existing record", outcome.Errors[0].Message)
	assert.Len(t, repo.customers, 1, "the colliding row must not insert a duplicate")
}

func TestImportSentinelEmailStoredOnNewCustomer(t *testing.T) {
	for _, raw := range []string{"", "NULL", "n/a", "-", " Null "} {
		repo := newMockRepository()
		row := "Jane Doe,0771234567,Colombo," + raw + ",12 Lane,,SKU1,1500.00,"

		outcome, err := runImport(t, repo, leadFile(row))

		require.NoError(t, err)
		require.Equal(t, 1, outcome.SuccessCount, "email value %q", raw)
		require.Len(t, repo.customers, 1)
		assert.Equal(t, customers.EmailNone, repo.customers[0].Email)
	}
}

func TestImportSentinelEmailCompatibleWithEmptyExistingEmail(t *testing.T) {
	repo := newMockRepository()
	jane := existingJane()
	jane.Email = ""
	repo.customers = append(repo.customers, jane)

	outcome, err := runImport(t, repo, leadFile("Jane Doe,0771234567,Colombo,-,12 Lane,,SKU1,1500.00,"))

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.SuccessCount)
	assert.Len(t, repo.customers, 1)
}

func TestImportSentinelEmailConflictsWithRealExistingEmail(t *testing.T) {
	repo := newMockRepository()
	repo.customers = append(repo.customers, existingJane())

	outcome, err := runImport(t, repo, leadFile("Jane Doe,0771234567,Colombo,,12 Lane,,SKU1,1500.00,"))

	require.NoError(t, err)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, "Customer data mismatch with existing record", outcome.Errors[0].Message)
}

func TestImportConcurrentInsertSurfacesAsConflict(t *testing.T) {
	repo := newMockRepository()
	repo.createCustomerErr = ErrCustomerConflict

	outcome, err := runImport(t, repo, leadFile("Jane Doe,0771234567,Colombo,,12 Lane,,SKU1,1500.00,"))

	require.NoError(t, err)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, "Customer data mismatch with existing record", outcome.Errors[0].Message)
	assert.Empty(t, repo.orders)
}

// ============================================================================
// PERSISTENCE AND ATOMICITY
// ============================================================================

func TestImportItemFailureRollsBackHeader(t *testing.T) {
	repo := newMockRepository()
	repo.createItemErr = errors.New("disk full")

	outcome, err := runImport(t, repo, leadFile("Jane Doe,0771234567,Colombo,,12 Lane,,SKU1,1500.00,"))

	require.NoError(t, err)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, "Failed to save order", outcome.Errors[0].Message)
	assert.Empty(t, repo.orders, "the header must not survive without its item")
	assert.Empty(t, repo.customers, "the row's customer insert rolls back with it")
}

func TestImportItemFailureDoesNotAbortBatch(t *testing.T) {
	repo := newMockRepository()
	file := leadFile(
		"Jane Doe,0771234567,Colombo,,12 Lane,,SKU1,1500.00,",
		"John Roe,0719876543,Kandy,,3 Hill St,,SKU1,2000.00,",
	)

	// Fail the first row's item write only.
	calls := 0
	wrapped := &failFirstItem{mockRepository: repo, failures: 1, calls: &calls}
	svc := newTestService(wrapped)

	outcome, err := svc.Import(context.Background(), ImportRequest{
		Reader:     strings.NewReader(file),
		ImporterID: 42,
		HandlerIDs: []int64{7},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.SuccessCount)
	assert.Equal(t, 1, outcome.ErrorCount)
	assert.Len(t, repo.orders, 1)
	assert.Len(t, repo.items, 1)
}

type failFirstItem struct {
	*mockRepository
	failures int
	calls    *int
}

func (f *failFirstItem) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, f)
}

func (f *failFirstItem) WithSavepoint(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return f.mockRepository.WithSavepoint(ctx, func(ctx context.Context, _ TxRepository) error {
		return fn(ctx, f)
	})
}

func (f *failFirstItem) CreateOrderItem(ctx context.Context, it orders.OrderItem) (int64, error) {
	*f.calls++
	if *f.calls <= f.failures {
		return 0, errors.New("transient write failure")
	}
	return f.mockRepository.CreateOrderItem(ctx, it)
}

func TestImportBatchFatalRollsBackEverything(t *testing.T) {
	repo := newMockRepository()
	repo.txError = errors.New("connection refused")

	_, err := runImport(t, repo, leadFile("Jane Doe,0771234567,Colombo,,12 Lane,,SKU1,1500.00,"))

	require.Error(t, err)
	assert.Empty(t, repo.orders)
}

// ============================================================================
// IDEMPOTENCE
// ============================================================================

func TestImportRerunReusesCustomersAndDuplicatesOrders(t *testing.T) {
	repo := newMockRepository()
	file := leadFile(
		"Jane Doe,0771234567,Colombo,jane@x.com,12 Lane,,SKU1,1500.00,",
		"John Roe,0719876543,Kandy,,3 Hill St,,SKU1,2000.00,",
	)

	first, err := runImport(t, repo, file)
	require.NoError(t, err)
	require.Equal(t, 2, first.SuccessCount)
	require.Len(t, repo.customers, 2)
	require.Len(t, repo.orders, 2)

	second, err := runImport(t, repo, file)
	require.NoError(t, err)
	assert.Equal(t, 2, second.SuccessCount)
	assert.Len(t, repo.customers, 2, "customer count must not grow on rerun")
	assert.Len(t, repo.orders, 4, "orders are not deduplicated")
}
