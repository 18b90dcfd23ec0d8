package domain

var Tables = []interface{}{
	// System
	&SysOpr{},
	&SysOprLog{},
	// Real-time documents
	&RtNode{},
}

// Collection names of the real-time store.
const (
	CollectionProducts = "products"
	CollectionSales    = "sales"
	CollectionStays    = "stays"
	CollectionExpenses = "expenses"
)

// LedgerCollections are the collections cleared by a ledger reset.
var LedgerCollections = []string{CollectionSales, CollectionStays, CollectionExpenses}
