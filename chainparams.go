package btclibwallet

import (
	"github.com/btcsuite/btcd/chaincfg"
)

// Checkpoint is a trusted (height, time) anchor from the chain parameter
// table. Checkpoints bound the initial scan height and anchor medium-depth
// rescans.
type Checkpoint struct {
	Height    uint64
	Timestamp int64
}

// ChainParams couples the btcd network parameters with the checkpoint table
// the sync managers consult. The Checkpoints slice must be sorted by
// ascending height.
type ChainParams struct {
	*chaincfg.Params
	Checkpoints []Checkpoint
}

// CheckpointBefore returns the most recent checkpoint with a timestamp not
// after unixTime, or nil if there is none.
func (params *ChainParams) CheckpointBefore(unixTime int64) *Checkpoint {
	for i := len(params.Checkpoints) - 1; i >= 0; i-- {
		if params.Checkpoints[i].Timestamp <= unixTime {
			return &params.Checkpoints[i]
		}
	}
	return nil
}

// CheckpointBeforeBlockNumber returns the most recent checkpoint strictly
// below the given height, or nil if there is none.
func (params *ChainParams) CheckpointBeforeBlockNumber(height uint64) *Checkpoint {
	for i := len(params.Checkpoints) - 1; i >= 0; i-- {
		if params.Checkpoints[i].Height < height {
			return &params.Checkpoints[i]
		}
	}
	return nil
}

// LastCheckpoint returns the highest checkpoint in the table, or nil for an
// empty table.
func (params *ChainParams) LastCheckpoint() *Checkpoint {
	if len(params.Checkpoints) == 0 {
		return nil
	}
	return &params.Checkpoints[len(params.Checkpoints)-1]
}

// Header timestamps of well-spaced mainnet blocks. The table does not need
// to be dense; a checkpoint only bounds how far back a rescan starts.
var mainNetCheckpoints = []Checkpoint{
	{0, 1231006505},
	{20160, 1248481816},
	{40320, 1266191579},
	{60480, 1276298786},
	{80640, 1284861847},
	{100800, 1294031411},
	{120960, 1304131980},
	{141120, 1310477794},
	{161280, 1316457285},
	{181440, 1323374607},
	{201600, 1330606085},
	{221760, 1338556244},
	{241920, 1345774891},
	{262080, 1353928117},
	{282240, 1361227839},
	{302400, 1368687014},
	{322560, 1376011655},
	{342720, 1383061658},
	{362880, 1390295964},
	{383040, 1397236308},
	{403200, 1404305852},
	{423360, 1411211438},
	{443520, 1418754404},
	{463680, 1425550867},
	{483840, 1432528923},
	{504000, 1439048804},
	{524160, 1445599255},
	{544320, 1452322298},
	{564480, 1458902821},
	{584640, 1465353421},
	{604800, 1472061214},
	{624960, 1478538144},
	{645120, 1485175906},
	{665280, 1491154851},
	{685440, 1496870680},
	{705600, 1503539857},
	{725760, 1510135161},
	{745920, 1516891229},
	{766080, 1522608292},
	{786240, 1533980459},
	{806400, 1541811566},
	{826560, 1548751733},
	{846720, 1555934858},
	{866880, 1562887740},
}

var testNet3Checkpoints = []Checkpoint{
	{0, 1296688602},
	{100800, 1376543922},
	{201600, 1393813869},
	{302400, 1413766239},
	{403200, 1431821666},
	{504000, 1436951946},
	{604800, 1447484641},
	{705600, 1455728685},
	{806400, 1462006183},
	{907200, 1469705562},
	{1008000, 1476926743},
	{1108800, 1490751239},
	{1209600, 1507328506},
	{1310400, 1527038604},
	{1411200, 1535535770},
	{1512000, 1556081498},
}

// MainNetParams returns the bitcoin mainnet parameters with the built-in
// checkpoint table.
func MainNetParams() *ChainParams {
	return &ChainParams{
		Params:      &chaincfg.MainNetParams,
		Checkpoints: mainNetCheckpoints,
	}
}

// TestNet3Params returns the bitcoin testnet3 parameters with the built-in
// checkpoint table.
func TestNet3Params() *ChainParams {
	return &ChainParams{
		Params:      &chaincfg.TestNet3Params,
		Checkpoints: testNet3Checkpoints,
	}
}

// NetParams returns the built-in chain parameters for netType, or nil if the
// network is not one of them. The chain registry is not consulted.
func NetParams(netType string) *ChainParams {
	switch netType {
	case "mainnet":
		return MainNetParams()
	case "testnet3", "testnet":
		return TestNet3Params()
	default:
		return nil
	}
}
