package pgsql_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/budgetledger/budget_ledger_app/internal/apperrors"
	"github.com/budgetledger/budget_ledger_app/internal/core/domain"
	portsrepo "github.com/budgetledger/budget_ledger_app/internal/core/ports/repositories"
	"github.com/budgetledger/budget_ledger_app/internal/repositories/database/pgsql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// versionRow is one bookkeeping row of a version chain, ordered by number.
type versionRow struct {
	Number     int64
	MostRecent bool
	Deleted    bool
}

// RepositoryIntegrationTestSuite runs the repositories against a real
// Postgres. It is skipped unless TEST_DATABASE_URL is set.
type RepositoryIntegrationTestSuite struct {
	suite.Suite
	pool  *pgxpool.Pool
	repos portsrepo.RepositoryProvider
}

func (suite *RepositoryIntegrationTestSuite) SetupSuite() {
	dsn := os.Getenv("TEST_DATABASE_URL")

	db, err := sql.Open("pgx", dsn)
	suite.Require().NoError(err)
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	suite.Require().NoError(err)
	m, err := migrate.NewWithDatabaseInstance("file://../../../../migrations", "postgres", driver)
	suite.Require().NoError(err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		suite.FailNow("failed to run migrations", err.Error())
	}
	suite.Require().NoError(db.Close())

	pool, err := pgxpool.New(context.Background(), dsn)
	suite.Require().NoError(err)
	suite.pool = pool
	suite.repos = pgsql.NewRepositoryProvider(pool)
}

func (suite *RepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
}

// newUserWithBudget registers a fresh plan, user and budget. CreateBudget
// grants the user full permissions and plants the four roots.
func (suite *RepositoryIntegrationTestSuite) newUserWithBudget(ctx context.Context) (userID, budgetID string) {
	planID := uuid.NewString()
	suite.Require().NoError(suite.repos.PlanRepo.CreatePlan(ctx, domain.Plan{
		PlanID: planID,
		Name:   "basic",
		Cost:   decimal.NewFromInt(0),
	}))

	userID = uuid.NewString()
	suite.Require().NoError(suite.repos.UserRepo.CreateUser(ctx, domain.User{
		UserID:      userID,
		FullName:    "Test User",
		DisplayName: "tester",
		Email:       userID + "@example.com",
		PlanID:      planID,
	}, "not-a-real-hash"))

	budgetID = uuid.NewString()
	suite.Require().NoError(suite.repos.BudgetRepo.CreateBudget(ctx, domain.Budget{
		BudgetID: budgetID,
		Name:     "household",
	}, userID))
	return userID, budgetID
}

// newChildNode creates a node under the internal/location root.
func (suite *RepositoryIntegrationTestSuite) newChildNode(ctx context.Context, userID, budgetID, name string) string {
	root, err := suite.repos.NodeRepo.FindRootNode(ctx, budgetID, domain.DomainInternal, domain.LayerLocation)
	suite.Require().NoError(err)

	nodeID := uuid.NewString()
	suite.Require().NoError(suite.repos.NodeRepo.CreateChildNode(ctx, domain.Node{
		NodeID:       nodeID,
		BudgetID:     budgetID,
		ParentNodeID: &root.NodeID,
		Name:         name,
		OpeningDate:  time.Now().UTC(),
	}, userID))
	return nodeID
}

// versionChain reads the bookkeeping columns of one identity's version rows.
func (suite *RepositoryIntegrationTestSuite) versionChain(ctx context.Context, table, idColumn, id string) []versionRow {
	rows, err := suite.pool.Query(ctx, `
		SELECT version_number, is_most_recent, is_deleted
		FROM `+table+`
		WHERE `+idColumn+` = $1
		ORDER BY version_number;
	`, id)
	suite.Require().NoError(err)
	defer rows.Close()

	chain := []versionRow{}
	for rows.Next() {
		var v versionRow
		suite.Require().NoError(rows.Scan(&v.Number, &v.MostRecent, &v.Deleted))
		chain = append(chain, v)
	}
	suite.Require().NoError(rows.Err())
	return chain
}

// assertChainBookkeeping checks gap-free numbering from the given start and
// exactly one current version, sitting at the end of the chain.
func (suite *RepositoryIntegrationTestSuite) assertChainBookkeeping(chain []versionRow, start int64) {
	suite.Require().NotEmpty(chain)
	currents := 0
	for i, v := range chain {
		suite.Equal(start+int64(i), v.Number)
		if v.MostRecent {
			currents++
		}
	}
	suite.Equal(1, currents)
	suite.True(chain[len(chain)-1].MostRecent)
}

// --- Test Cases ---

func (suite *RepositoryIntegrationTestSuite) TestNodeVersionChainBookkeeping() {
	ctx := context.Background()
	userID, budgetID := suite.newUserWithBudget(ctx)
	nodeID := suite.newChildNode(ctx, userID, budgetID, "groceries")

	for _, name := range []string{"food", "food and drink"} {
		suite.Require().NoError(suite.repos.NodeRepo.UpdateNode(ctx, domain.Node{
			NodeID:      nodeID,
			BudgetID:    budgetID,
			Name:        name,
			OpeningDate: time.Now().UTC(),
		}, userID))
	}
	suite.Require().NoError(suite.repos.NodeRepo.DeleteNode(ctx, budgetID, nodeID, userID))

	chain := suite.versionChain(ctx, "node_versions", "node_id", nodeID)
	suite.Require().Len(chain, 4)
	suite.assertChainBookkeeping(chain, 0)
	suite.True(chain[3].Deleted)
	for _, v := range chain[:3] {
		suite.False(v.Deleted)
	}
}

func (suite *RepositoryIntegrationTestSuite) TestRootNodeVersionStartsAtOne() {
	ctx := context.Background()
	_, budgetID := suite.newUserWithBudget(ctx)
	root, err := suite.repos.NodeRepo.FindRootNode(ctx, budgetID, domain.DomainExternal, domain.LayerPurpose)
	suite.Require().NoError(err)

	chain := suite.versionChain(ctx, "node_versions", "node_id", root.NodeID)
	suite.Require().Len(chain, 1)
	suite.assertChainBookkeeping(chain, 1)
}

func (suite *RepositoryIntegrationTestSuite) TestConcurrentNodeUpdatesSerialize() {
	ctx := context.Background()
	userID, budgetID := suite.newUserWithBudget(ctx)
	nodeID := suite.newChildNode(ctx, userID, budgetID, "travel")

	const writers = 4
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = suite.repos.NodeRepo.UpdateNode(ctx, domain.Node{
				NodeID:      nodeID,
				BudgetID:    budgetID,
				Name:        "travel " + uuid.NewString(),
				OpeningDate: time.Now().UTC(),
			}, userID)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		suite.Require().NoError(err)
	}

	// The row lock serializes the writers: one version per update, no gaps
	// and no duplicate numbers.
	chain := suite.versionChain(ctx, "node_versions", "node_id", nodeID)
	suite.Require().Len(chain, writers+1)
	suite.assertChainBookkeeping(chain, 0)
}

func (suite *RepositoryIntegrationTestSuite) TestNodeMutationScopedToBudget() {
	ctx := context.Background()
	attackerID, attackerBudgetID := suite.newUserWithBudget(ctx)
	_, victimBudgetID := suite.newUserWithBudget(ctx)

	victimRoot, err := suite.repos.NodeRepo.FindRootNode(ctx, victimBudgetID, domain.DomainInternal, domain.LayerLocation)
	suite.Require().NoError(err)

	// Full permissions on the attacker's own budget must not reach a node
	// of another budget, root protection included.
	err = suite.repos.NodeRepo.DeleteNode(ctx, attackerBudgetID, victimRoot.NodeID, attackerID)
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	err = suite.repos.NodeRepo.UpdateNode(ctx, domain.Node{
		NodeID:      victimRoot.NodeID,
		BudgetID:    attackerBudgetID,
		Name:        "renamed",
		OpeningDate: time.Now().UTC(),
	}, attackerID)
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	chain := suite.versionChain(ctx, "node_versions", "node_id", victimRoot.NodeID)
	suite.Require().Len(chain, 1)
	suite.False(chain[0].Deleted)
}

func (suite *RepositoryIntegrationTestSuite) TestTransactionMutationScopedToBudget() {
	ctx := context.Background()
	attackerID, attackerBudgetID := suite.newUserWithBudget(ctx)
	victimID, victimBudgetID := suite.newUserWithBudget(ctx)

	txn := suite.newBalancedTransaction(ctx, victimID, victimBudgetID)

	err := suite.repos.TransactionRepo.DeleteTransaction(ctx, attackerBudgetID, txn.TransactionID, attackerID)
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	got, err := suite.repos.TransactionRepo.FindTransactionByID(ctx, txn.TransactionID)
	suite.Require().NoError(err)
	suite.False(got.IsDeleted)
}

// newBalancedTransaction creates a two-posting transaction on fresh child
// nodes of the budget.
func (suite *RepositoryIntegrationTestSuite) newBalancedTransaction(ctx context.Context, userID, budgetID string) domain.Transaction {
	nodeA := suite.newChildNode(ctx, userID, budgetID, "wallet")
	nodeB := suite.newChildNode(ctx, userID, budgetID, "groceries")

	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		BudgetID:      budgetID,
		Date:          time.Now().UTC(),
		Description:   "weekly shop",
		Postings: []domain.Posting{
			{PostingID: uuid.NewString(), NodeID: nodeA, Amount: decimal.NewFromInt(100)},
			{PostingID: uuid.NewString(), NodeID: nodeB, Amount: decimal.NewFromInt(-100)},
		},
	}
	suite.Require().NoError(suite.repos.TransactionRepo.CreateTransaction(ctx, txn, userID))
	return txn
}

func (suite *RepositoryIntegrationTestSuite) TestUpdateTransactionReconcilesAgainstCommittedState() {
	ctx := context.Background()
	userID, budgetID := suite.newUserWithBudget(ctx)
	txn := suite.newBalancedTransaction(ctx, userID, budgetID)
	kept, dropped := txn.Postings[0], txn.Postings[1]

	// First update drops the second posting in favour of a fresh one.
	replacement := domain.Posting{PostingID: uuid.NewString(), NodeID: dropped.NodeID, Amount: decimal.NewFromInt(-60)}
	err := suite.repos.TransactionRepo.UpdateTransaction(ctx, domain.Transaction{
		TransactionID: txn.TransactionID,
		BudgetID:      budgetID,
		Date:          txn.Date,
		Description:   "weekly shop, corrected",
	}, []domain.Posting{
		{PostingID: kept.PostingID, NodeID: kept.NodeID, Amount: decimal.NewFromInt(60)},
		replacement,
	}, userID)
	suite.Require().NoError(err)

	// A second update still referencing the dropped posting acts on the
	// committed state: the id now belongs to a deleted posting and the
	// update is rejected instead of reviving it.
	err = suite.repos.TransactionRepo.UpdateTransaction(ctx, domain.Transaction{
		TransactionID: txn.TransactionID,
		BudgetID:      budgetID,
		Date:          txn.Date,
		Description:   "stale view",
	}, []domain.Posting{
		{PostingID: kept.PostingID, NodeID: kept.NodeID, Amount: decimal.NewFromInt(40)},
		{PostingID: dropped.PostingID, NodeID: dropped.NodeID, Amount: decimal.NewFromInt(-40)},
	}, userID)
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)

	// Deletion is one-way: the dropped posting's chain ends deleted with no
	// live version after it.
	chain := suite.versionChain(ctx, "posting_versions", "posting_id", dropped.PostingID)
	suite.assertChainBookkeeping(chain, 0)
	seenDeleted := false
	for _, v := range chain {
		if seenDeleted {
			suite.True(v.Deleted)
		}
		seenDeleted = seenDeleted || v.Deleted
	}
	suite.True(seenDeleted)
}

func TestRepositoryIntegrationTestSuite(t *testing.T) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	suite.Run(t, new(RepositoryIntegrationTestSuite))
}
