package constants

const (
	ContractAddress      = "klp-6361657468-cc"
	ContractAddressRegex = `klp-[a-fA-F0-9]+-cc`
	AccountIdRegex       = `^(([a-z\d]+[\-_])*[a-z\d]+\.)*([a-z\d]+[\-_])*[a-z\d]+$`
	MinAccountIdLen      = 2
	MaxAccountIdLen      = 64

	FtMetadataSpec  = "ft-1.0.0"
	DefaultName     = "Chain Abstraction ETH"
	DefaultSymbol   = "caETH"
	DefaultDecimals = 24
	MaxDecimals     = 38
	DefaultIcon     = "data:image/svg+xml,%3Csvg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 288 288'%3E%3Cg id='l' data-name='l'%3E%3Cpath d='M187.58,79.81l-30.1,44.69a3.2,3.2,0,0,0,4.75,4.2L191.86,103a1.2,1.2,0,0,1,2,.91v80.46a1.2,1.2,0,0,1-2.12.77L102.18,77.93A15.35,15.35,0,0,0,90.47,72.5H87.34A15.34,15.34,0,0,0,72,87.84V201.16A15.34,15.34,0,0,0,87.34,216.5h0a15.35,15.35,0,0,0,13.08-7.31l30.1-44.69a3.2,3.2,0,0,0-4.75-4.2L96.14,186a1.2,1.2,0,0,1-2-.91V104.61a1.2,1.2,0,0,1,2.12-.77l89.55,107.23a15.35,15.35,0,0,0,11.71,5.43h3.13A15.34,15.34,0,0,0,216,201.16V87.84A15.34,15.34,0,0,0,200.66,72.5h0A15.35,15.35,0,0,0,187.58,79.81Z'/%3E%3C/g%3E%3C/svg%3E"
	ReferenceHashLen = 32

	// world state keys; account records are AccountPrefix + account id
	AccountPrefix         = "a"
	MetadataKey           = "m"
	TotalSupplyKey        = "t"
	ConfigKey             = "c"
	StorageUsageKey       = "u"
	PendingTransferPrefix = "p"

	U128Bytes = 16

	// yocto units per byte of state, same price the NEAR runtime charges
	StorageBytePrice      = "10000000000000000000"
	StorageRecordOverhead = 40
	AccountSlotBytes      = int64(len(AccountPrefix) + MaxAccountIdLen + U128Bytes + StorageRecordOverhead)

	EventName      = "nep141"
	EventStandard  = "nep141"
	EventVersion   = "1.0.0"
	EventLogPrefix = "EVENT_JSON:"
	FtMint         = "ft_mint"
	FtBurn         = "ft_burn"
	FtTransfer     = "ft_transfer"
	FtTransferCall = "ft_transfer_call"

	InitialMintMemo = "Initial tokens supply is minted"
	CaethMintMemo   = "caETH supply is minted"
	RefundMemo      = "refund"
	UnregisterMemo  = "storage unregister"
)
