package types_test

import (
	"math/big"
	"time"

	"github.com/catalogfi/barter/daemon/types"
	"github.com/catalogfi/barter/pkg/swap"
	"github.com/ethereum/go-ethereum/common"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Types", func() {
	Context("when parsing addresses", func() {
		It("should accept a checksummed address", func() {
			addr, err := types.ParseAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
			Expect(err).To(BeNil())
			Expect(addr).To(Equal(common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")))
		})

		It("should reject junk", func() {
			for _, s := range []string{"", "alice", "0x1234", "0xZZ997970C51812dc3A010C7d01b50e0d17dc79C8"} {
				_, err := types.ParseAddress(s)
				Expect(err).To(HaveOccurred())
			}
		})
	})

	Context("when parsing assets", func() {
		It("should accept decimal and hex token ids", func() {
			a, err := types.ParseAsset(types.RequestLeg{
				Contract: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
				TokenID:  "42",
			})
			Expect(err).To(BeNil())
			Expect(a.TokenID.Cmp(big.NewInt(42))).To(Equal(0))

			a, err = types.ParseAsset(types.RequestLeg{
				Contract: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
				TokenID:  "0x2a",
			})
			Expect(err).To(BeNil())
			Expect(a.TokenID.Cmp(big.NewInt(42))).To(Equal(0))
		})

		It("should reject negative and malformed token ids", func() {
			for _, tokenID := range []string{"-1", "", "forty-two"} {
				_, err := types.ParseAsset(types.RequestLeg{
					Contract: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
					TokenID:  tokenID,
				})
				Expect(err).To(HaveOccurred())
			}
		})
	})

	Context("when parsing status filters", func() {
		It("should map the names onto the enum", func() {
			for name, want := range map[string]swap.Status{
				"":          swap.Unknown,
				"active":    swap.Active,
				"executed":  swap.Executed,
				"cancelled": swap.Cancelled,
			} {
				status, err := types.ParseStatus(name)
				Expect(err).To(BeNil())
				Expect(status).To(Equal(want))
			}

			_, err := types.ParseStatus("pending")
			Expect(err).To(HaveOccurred())
		})
	})

	Context("when rendering a swap", func() {
		It("should format the times and roles", func() {
			deadline := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
			info := types.NewSwapInfo(swap.Swap{
				ID:           7,
				Initiator:    common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
				Counterparty: common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"),
				Legs: []swap.Leg{
					{
						Asset: swap.NewAsset(common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"), big.NewInt(1)),
						Owner: common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
						Role:  swap.RoleInitiator,
					},
				},
				Status:    swap.Active,
				ExpiresAt: &deadline,
				CreatedAt: deadline.Add(-time.Hour),
			})

			Expect(info.ID).To(Equal(uint64(7)))
			Expect(info.Status).To(Equal("active"))
			Expect(info.ExpiresAt).To(Equal("2024-06-01T12:00:00Z"))
			Expect(info.ClosedAt).To(BeEmpty())
			Expect(info.Legs[0].Role).To(Equal("initiator"))
			Expect(info.Legs[0].TokenID).To(Equal("1"))
		})
	})
})
