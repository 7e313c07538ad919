package escrow

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const duelEscrowABI = `[
	{"anonymous":false,"inputs":[
		{"indexed":true,"internalType":"uint256","name":"duelId","type":"uint256"},
		{"indexed":true,"internalType":"address","name":"creator","type":"address"}
	],"name":"DuelCreated","type":"event"},
	{"anonymous":false,"inputs":[
		{"indexed":true,"internalType":"uint256","name":"duelId","type":"uint256"},
		{"indexed":true,"internalType":"address","name":"joiner","type":"address"},
		{"indexed":false,"internalType":"uint256","name":"startPrice","type":"uint256"}
	],"name":"DuelJoined","type":"event"},
	{"anonymous":false,"inputs":[
		{"indexed":true,"internalType":"uint256","name":"duelId","type":"uint256"},
		{"indexed":false,"internalType":"address","name":"winner","type":"address"},
		{"indexed":false,"internalType":"uint256","name":"payout","type":"uint256"},
		{"indexed":false,"internalType":"uint256","name":"fee","type":"uint256"},
		{"indexed":false,"internalType":"bool","name":"draw","type":"bool"}
	],"name":"DuelSettled","type":"event"},
	{"anonymous":false,"inputs":[
		{"indexed":true,"internalType":"uint256","name":"duelId","type":"uint256"}
	],"name":"DuelCancelled","type":"event"},
	{"inputs":[
		{"internalType":"address","name":"creator","type":"address"},
		{"internalType":"string","name":"asset","type":"string"},
		{"internalType":"uint8","name":"duelType","type":"uint8"},
		{"internalType":"uint8","name":"direction","type":"uint8"},
		{"internalType":"uint64","name":"durationSec","type":"uint64"},
		{"internalType":"uint256","name":"stake","type":"uint256"}
	],"name":"createDuel","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[
		{"internalType":"uint256","name":"duelId","type":"uint256"},
		{"internalType":"address","name":"joiner","type":"address"},
		{"internalType":"uint8","name":"direction","type":"uint8"},
		{"internalType":"uint256","name":"startPrice","type":"uint256"}
	],"name":"joinDuel","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[
		{"internalType":"uint256","name":"duelId","type":"uint256"},
		{"internalType":"uint256","name":"endPrice","type":"uint256"}
	],"name":"settleDuel","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[
		{"internalType":"uint256","name":"duelId","type":"uint256"}
	],"name":"cancelDuel","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[
		{"internalType":"uint256","name":"duelId","type":"uint256"}
	],"name":"getDuel","outputs":[
		{"internalType":"uint8","name":"status","type":"uint8"},
		{"internalType":"address","name":"creator","type":"address"},
		{"internalType":"address","name":"joiner","type":"address"},
		{"internalType":"uint256","name":"stake","type":"uint256"},
		{"internalType":"uint256","name":"startPrice","type":"uint256"},
		{"internalType":"uint256","name":"endPrice","type":"uint256"},
		{"internalType":"address","name":"winner","type":"address"},
		{"internalType":"uint256","name":"payout","type":"uint256"},
		{"internalType":"uint256","name":"fee","type":"uint256"},
		{"internalType":"bool","name":"draw","type":"bool"},
		{"internalType":"uint64","name":"endsAt","type":"uint64"}
	],"stateMutability":"view","type":"function"}
]`

func mustParseABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(duelEscrowABI))
	if err != nil {
		panic(err)
	}
	return parsed
}
