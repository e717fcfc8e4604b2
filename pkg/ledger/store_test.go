package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paywise/models"
)

func TestAccountForCreatesZeroBalanceOnce(t *testing.T) {
	store := newTestStore(t)
	u := models.User{Username: "alice@example.com", HashedPassword: []byte("x"), FirstName: "Alice", LastName: "Smith"}
	require.NoError(t, store.db.Create(&u).Error)

	first, err := store.AccountFor(u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, first.Balance)

	second, err := store.AccountFor(u.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, store.db.Model(&models.Account{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAdjustBalanceGuardsNegativeResult(t *testing.T) {
	store := newTestStore(t)
	u := seedUser(t, store, "alice@example.com", "Alice", "Smith", 300)

	require.ErrorIs(t, store.AdjustBalance(u.ID, -301), ErrInsufficientFunds)
	assert.EqualValues(t, 300, balanceOf(t, store, u.ID))

	require.NoError(t, store.AdjustBalance(u.ID, -300))
	assert.EqualValues(t, 0, balanceOf(t, store, u.ID))

	require.ErrorIs(t, store.AdjustBalance(u.ID, -1), ErrInsufficientFunds)

	require.NoError(t, store.AdjustBalance(u.ID, 150))
	assert.EqualValues(t, 150, balanceOf(t, store, u.ID))
}

func TestAdjustBalanceMissingAccount(t *testing.T) {
	store := newTestStore(t)

	err := store.AdjustBalance(9999, 100)
	require.Error(t, err)

	require.ErrorIs(t, store.AdjustBalance(9999, -100), ErrInsufficientFunds)
}

func TestListTransactionsFiltersAndPaginates(t *testing.T) {
	store := newTestStore(t)
	u := seedUser(t, store, "alice@example.com", "Alice", "Smith", 0)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		category := "food"
		if i%2 == 1 {
			category = "rent"
		}
		require.NoError(t, store.AppendTransactions(&models.Transaction{
			UserID:   u.ID,
			Amount:   int64(100 * (i + 1)),
			Date:     base.AddDate(0, 0, i),
			Category: category,
		}))
	}

	all, err := store.ListTransactions(u.ID, TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.True(t, all[0].Date.After(all[4].Date), "newest first")

	food, err := store.ListTransactions(u.ID, TransactionFilter{Category: "food"})
	require.NoError(t, err)
	assert.Len(t, food, 3)

	from := base.AddDate(0, 0, 2)
	to := base.AddDate(0, 0, 3)
	ranged, err := store.ListTransactions(u.ID, TransactionFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	page1, err := store.ListTransactions(u.ID, TransactionFilter{Limit: 2, Page: 1})
	require.NoError(t, err)
	page2, err := store.ListTransactions(u.ID, TransactionFilter{Limit: 2, Page: 2})
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.Len(t, page2, 2)
	assert.NotEqual(t, page1[0].ID, page2[0].ID)
}

func TestPayeesListsContactsWithAccounts(t *testing.T) {
	store := newTestStore(t)
	alice := seedUser(t, store, "alice@example.com", "Alice", "Smith", 0)
	bob := seedUser(t, store, "bob@example.com", "Bob", "Jones", 0)
	carol := models.User{Username: "carol@example.com", HashedPassword: []byte("x"), FirstName: "Carol", LastName: "King"}
	require.NoError(t, store.db.Create(&carol).Error)

	require.NoError(t, store.AddPayee(alice.ID, bob.ID))
	require.NoError(t, store.AddPayee(alice.ID, carol.ID))

	contacts, err := store.Payees(alice.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "bob@example.com", contacts[0].Username)
	require.NotNil(t, contacts[0].AccountID)
	assert.Nil(t, contacts[1].AccountID, "carol has no account yet")
}

func TestSearchUsersMatchesNamesCaseInsensitively(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "alice@example.com", "Alice", "Smith", 0)
	seedUser(t, store, "bob@example.com", "Bob", "Smithers", 0)
	seedUser(t, store, "carol@example.com", "Carol", "King", 0)

	users, err := store.SearchUsers("smith")
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = store.SearchUsers("CAROL")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "carol@example.com", users[0].Username)
}

func TestUpdateUserIgnoresUsername(t *testing.T) {
	store := newTestStore(t)
	u := seedUser(t, store, "alice@example.com", "Alice", "Smith", 0)

	require.NoError(t, store.UpdateUser(u.ID, map[string]any{
		"first_name": "Alicia",
		"username":   "newhandle@example.com",
	}))

	updated, err := store.UserByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.FirstName)
	assert.Equal(t, "alice@example.com", updated.Username, "handles are immutable")
}

func TestNormalizeHandle(t *testing.T) {
	assert.Equal(t, "bob@example.com", NormalizeHandle("  Bob@Example.COM "))
	assert.Equal(t, "", NormalizeHandle("   "))
}
