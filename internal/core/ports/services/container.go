package services

// ServiceContainer bundles every service facade for injection into the HTTP
// layer.
type ServiceContainer struct {
	Account   AccountSvcFacade
	Posting   PostingSvcFacade
	Reversal  ReversalSvcFacade
	Journal   JournalSvcFacade
	Rule      RuleSvcFacade
	Outbox    OutboxSvcFacade
	Reporting ReportingSvcFacade
}
