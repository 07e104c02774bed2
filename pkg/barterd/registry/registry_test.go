package registry_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"time"

	"github.com/catalogfi/barter/pkg/barterd/registry"
	"github.com/catalogfi/barter/pkg/mock"
	"github.com/catalogfi/barter/pkg/notifier"
	"github.com/catalogfi/barter/pkg/store"
	"github.com/catalogfi/barter/pkg/swap"
	"github.com/ethereum/go-ethereum/common"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

var (
	alice    = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	bob      = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	operator = common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906")

	gallery = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	arcade  = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
)

func asset(contract common.Address, id int64) swap.Asset {
	return swap.NewAsset(contract, big.NewInt(id))
}

var _ = Describe("Registry", func() {
	var (
		ctx      context.Context
		storage  *mock.Store
		custody  *mock.Custody
		events   notifier.Notifier
		reg      *registry.Registry
		now      time.Time
		assets   []swap.Asset
		received <-chan notifier.SwapCreated
	)

	BeforeEach(func() {
		ctx = context.Background()
		storage = mock.NewStore()
		custody = mock.NewCustody(operator)
		events = notifier.NewInProc()
		now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		reg = registry.New(storage, custody, events, zap.NewNop(),
			registry.WithClock(func() time.Time { return now }))

		// alice owns the first two assets, bob the third
		assets = []swap.Asset{asset(gallery, 1), asset(gallery, 2), asset(arcade, 7)}
		custody.SetOwner(assets[0], alice)
		custody.SetOwner(assets[1], alice)
		custody.SetOwner(assets[2], bob)

		var err error
		received, err = events.Subscribe(ctx)
		Expect(err).To(BeNil())
	})

	Context("when the proposal is valid", func() {
		It("should store the swap and return a sequential id", func() {
			id, err := reg.Create(ctx, alice, bob, 2, assets, 0)
			Expect(err).To(BeNil())
			Expect(id).To(Equal(uint64(1)))

			id, err = reg.Create(ctx, bob, alice, 1, []swap.Asset{assets[2], assets[0]}, 0)
			Expect(err).To(BeNil())
			Expect(id).To(Equal(uint64(2)))
		})

		It("should record owners and roles per leg", func() {
			id, err := reg.Create(ctx, alice, bob, 2, assets, 0)
			Expect(err).To(BeNil())

			sw, err := reg.Swap(id)
			Expect(err).To(BeNil())
			Expect(sw.Initiator).To(Equal(alice))
			Expect(sw.Counterparty).To(Equal(bob))
			Expect(sw.Status).To(Equal(swap.Active))
			Expect(sw.ExpiresAt).To(BeNil())
			Expect(sw.Legs).To(HaveLen(3))
			Expect(sw.Legs[0].Role).To(Equal(swap.RoleInitiator))
			Expect(sw.Legs[1].Role).To(Equal(swap.RoleInitiator))
			Expect(sw.Legs[2].Role).To(Equal(swap.RoleCounterparty))
			Expect(sw.Legs[2].Owner).To(Equal(bob))
		})

		It("should set the deadline from the expiration window", func() {
			id, err := reg.Create(ctx, alice, bob, 2, assets, 300*time.Second)
			Expect(err).To(BeNil())

			sw, err := reg.Swap(id)
			Expect(err).To(BeNil())
			Expect(sw.ExpiresAt).NotTo(BeNil())
			Expect(*sw.ExpiresAt).To(Equal(now.Add(300 * time.Second)))
		})

		It("should publish one creation event", func() {
			id, err := reg.Create(ctx, alice, bob, 2, assets, 0)
			Expect(err).To(BeNil())

			var event notifier.SwapCreated
			Eventually(received).Should(Receive(&event))
			Expect(event.ID).To(Equal(id))
			Expect(event.Initiator).To(Equal(alice))
			Expect(event.Counterparty).To(Equal(bob))
		})

		It("should not instruct any transfer", func() {
			_, err := reg.Create(ctx, alice, bob, 2, assets, 0)
			Expect(err).To(BeNil())
			Expect(custody.Transfers()).To(BeEmpty())
		})
	})

	Context("when the proposal is malformed", func() {
		It("should reject fewer than two legs", func() {
			_, err := reg.Create(ctx, alice, bob, 1, assets[:1], 0)
			Expect(err).To(MatchError(swap.ErrTooFewLegs))
		})

		It("should reject a zero counterparty", func() {
			_, err := reg.Create(ctx, alice, common.Address{}, 2, assets, 0)
			Expect(err).To(MatchError(swap.ErrNilCounterparty))
		})

		It("should reject a swap with oneself", func() {
			_, err := reg.Create(ctx, alice, alice, 2, assets, 0)
			Expect(err).To(MatchError(swap.ErrSelfSwap))
		})

		It("should reject split indexes outside the leg list", func() {
			for _, splitIndex := range []int{-1, 0, 3, 4} {
				_, err := reg.Create(ctx, alice, bob, splitIndex, assets, 0)
				Expect(err).To(MatchError(swap.ErrSplitIndex))
			}
		})

		It("should reject duplicates across the two halves", func() {
			_, err := reg.Create(ctx, alice, bob, 2, []swap.Asset{assets[0], assets[1], assets[0]}, 0)
			Expect(err).To(MatchError(swap.ErrDuplicateAsset))

			var legErr *swap.LegError
			Expect(errors.As(err, &legErr)).To(BeTrue())
			Expect(legErr.Index).To(Equal(2))
		})

		It("should always reject an injected duplicate", func() {
			rng := rand.New(rand.NewSource(GinkgoRandomSeed()))
			for i := 0; i < 50; i++ {
				size := 2 + rng.Intn(8)
				list := make([]swap.Asset, size)
				for j := range list {
					list[j] = asset(gallery, int64(1000*i+j))
				}
				src := rng.Intn(size)
				dst := rng.Intn(size)
				for dst == src {
					dst = rng.Intn(size)
				}
				list[dst] = list[src]

				_, err := reg.Create(ctx, alice, bob, 1+rng.Intn(size-1), list, 0)
				Expect(err).To(MatchError(swap.ErrDuplicateAsset))
			}
		})

		It("should not create a record on failure", func() {
			_, err := reg.Create(ctx, alice, bob, 2, []swap.Asset{assets[0], assets[1], assets[0]}, 0)
			Expect(err).To(HaveOccurred())

			swaps, err := storage.Swaps(store.Filter{})
			Expect(err).To(BeNil())
			Expect(swaps).To(BeEmpty())
			Consistently(received).ShouldNot(Receive())
		})
	})

	Context("when the ownership snapshot is stale", func() {
		It("should reject an initiator leg the caller does not own", func() {
			custody.SetOwner(assets[1], bob)

			_, err := reg.Create(ctx, alice, bob, 2, assets, 0)
			Expect(err).To(MatchError(swap.ErrOwnershipMismatch))

			var legErr *swap.LegError
			Expect(errors.As(err, &legErr)).To(BeTrue())
			Expect(legErr.Index).To(Equal(1))
		})

		It("should reject a counterparty leg the counterparty does not own", func() {
			custody.SetOwner(assets[2], alice)

			_, err := reg.Create(ctx, alice, bob, 2, assets, 0)
			Expect(err).To(MatchError(swap.ErrOwnershipMismatch))

			var legErr *swap.LegError
			Expect(errors.As(err, &legErr)).To(BeTrue())
			Expect(legErr.Index).To(Equal(2))
		})

		It("should surface custody lookup failures with the leg index", func() {
			unknown := asset(arcade, 999)
			_, err := reg.Create(ctx, alice, bob, 1, []swap.Asset{assets[0], unknown}, 0)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(fmt.Sprintf("leg %d", 1)))
		})
	})
})
