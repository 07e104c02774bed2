package engine_test

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/catalogfi/barter/pkg/barterd/engine"
	"github.com/catalogfi/barter/pkg/barterd/registry"
	"github.com/catalogfi/barter/pkg/mock"
	"github.com/catalogfi/barter/pkg/notifier"
	"github.com/catalogfi/barter/pkg/swap"
	"github.com/ethereum/go-ethereum/common"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

var (
	alice    = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	bob      = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	carol    = common.HexToAddress("0x15d34AAf54267DB7D7c367839AAf71A00a2C6A65")
	operator = common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906")

	gallery = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	arcade  = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
)

func asset(contract common.Address, id int64) swap.Asset {
	return swap.NewAsset(contract, big.NewInt(id))
}

var _ = Describe("Engine", func() {
	var (
		ctx     context.Context
		storage *mock.Store
		custody *mock.Custody
		reg     *registry.Registry
		exe     *engine.Engine
		now     time.Time

		x1, x2, y1 swap.Asset
	)

	clock := func() time.Time { return now }

	// createSwap proposes the standard scenario: alice offers x1 and x2
	// for bob's y1.
	createSwap := func(expiresIn time.Duration) uint64 {
		id, err := reg.Create(ctx, alice, bob, 2, []swap.Asset{x1, x2, y1}, expiresIn)
		Expect(err).To(BeNil())
		return id
	}

	approveEverything := func() {
		custody.ApproveAll(gallery, alice, operator, true)
		custody.Approve(y1, operator)
	}

	BeforeEach(func() {
		ctx = context.Background()
		storage = mock.NewStore()
		custody = mock.NewCustody(operator)
		now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		reg = registry.New(storage, custody, notifier.NewInProc(), zap.NewNop(),
			registry.WithClock(clock))
		exe = engine.New(storage, custody, zap.NewNop(), engine.WithClock(clock))

		x1, x2, y1 = asset(gallery, 1), asset(gallery, 2), asset(arcade, 7)
		custody.SetOwner(x1, alice)
		custody.SetOwner(x2, alice)
		custody.SetOwner(y1, bob)
	})

	Context("when the counterparty executes a fully approved swap", func() {
		It("should move every asset to the other party and close the swap", func() {
			id := createSwap(0)
			approveEverything()

			Expect(exe.Execute(ctx, bob, id)).To(Succeed())

			owner, err := custody.OwnerOf(ctx, y1)
			Expect(err).To(BeNil())
			Expect(owner).To(Equal(alice))
			for _, a := range []swap.Asset{x1, x2} {
				owner, err := custody.OwnerOf(ctx, a)
				Expect(err).To(BeNil())
				Expect(owner).To(Equal(bob))
			}

			sw, err := storage.Swap(id)
			Expect(err).To(BeNil())
			Expect(sw.Status).To(Equal(swap.Executed))
			Expect(sw.ClosedAt).NotTo(BeNil())
		})
	})

	Context("when a leg lacks approval", func() {
		It("should abort without a single transfer", func() {
			id := createSwap(0)
			custody.ApproveAll(gallery, alice, operator, true)
			// bob never approves y1, the last leg

			err := exe.Execute(ctx, bob, id)
			Expect(err).To(MatchError(swap.ErrApprovalMissing))

			var legErr *swap.LegError
			Expect(errors.As(err, &legErr)).To(BeTrue())
			Expect(legErr.Index).To(Equal(2))

			Expect(custody.Transfers()).To(BeEmpty())
			sw, err := storage.Swap(id)
			Expect(err).To(BeNil())
			Expect(sw.Status).To(Equal(swap.Active))
		})

		It("should accept a per-asset approval in place of a blanket one", func() {
			id := createSwap(0)
			custody.Approve(x1, operator)
			custody.Approve(x2, operator)
			custody.Approve(y1, operator)

			Expect(exe.Execute(ctx, bob, id)).To(Succeed())
		})
	})

	Context("when the deadline is involved", func() {
		It("should execute at exactly the deadline", func() {
			id := createSwap(100 * time.Second)
			approveEverything()

			now = now.Add(100 * time.Second)
			Expect(exe.Execute(ctx, bob, id)).To(Succeed())
		})

		It("should refuse one second past the deadline", func() {
			id := createSwap(100 * time.Second)
			approveEverything()

			now = now.Add(101 * time.Second)
			Expect(exe.Execute(ctx, bob, id)).To(MatchError(swap.ErrExpired))
			Expect(custody.Transfers()).To(BeEmpty())
		})

		It("should still allow the initiator to cancel after expiry", func() {
			id := createSwap(100 * time.Second)

			now = now.Add(24 * time.Hour)
			Expect(exe.Cancel(ctx, alice, id)).To(Succeed())
		})
	})

	Context("when the caller is not a party", func() {
		It("should refuse execution and cancellation", func() {
			id := createSwap(0)
			approveEverything()

			Expect(exe.Execute(ctx, carol, id)).To(MatchError(swap.ErrUnauthorized))
			Expect(exe.Cancel(ctx, carol, id)).To(MatchError(swap.ErrUnauthorized))
			Expect(custody.Transfers()).To(BeEmpty())
		})

		It("should keep the roles one-directional", func() {
			id := createSwap(0)
			approveEverything()

			// only the counterparty executes, only the initiator cancels
			Expect(exe.Execute(ctx, alice, id)).To(MatchError(swap.ErrUnauthorized))
			Expect(exe.Cancel(ctx, bob, id)).To(MatchError(swap.ErrUnauthorized))
		})
	})

	Context("when the swap is already terminal", func() {
		It("should stay closed after execution", func() {
			id := createSwap(0)
			approveEverything()
			Expect(exe.Execute(ctx, bob, id)).To(Succeed())

			Expect(exe.Execute(ctx, bob, id)).To(MatchError(swap.ErrSwapClosed))
			Expect(exe.Cancel(ctx, alice, id)).To(MatchError(swap.ErrSwapClosed))
			Expect(custody.Transfers()).To(HaveLen(3))
		})

		It("should stay closed after cancellation", func() {
			id := createSwap(0)
			approveEverything()
			Expect(exe.Cancel(ctx, alice, id)).To(Succeed())

			Expect(exe.Execute(ctx, bob, id)).To(MatchError(swap.ErrSwapClosed))
			Expect(exe.Cancel(ctx, alice, id)).To(MatchError(swap.ErrSwapClosed))
			Expect(custody.Transfers()).To(BeEmpty())

			sw, err := storage.Swap(id)
			Expect(err).To(BeNil())
			Expect(sw.Status).To(Equal(swap.Cancelled))
		})
	})

	Context("when the swap does not exist", func() {
		It("should report it", func() {
			Expect(exe.Execute(ctx, bob, 42)).To(MatchError(swap.ErrSwapNotFound))
			Expect(exe.Cancel(ctx, alice, 42)).To(MatchError(swap.ErrSwapNotFound))
		})
	})
})
