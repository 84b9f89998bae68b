package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/gbasim/insts"
)

var _ = Describe("Insts Package", func() {
	It("should have an Instruction type", func() {
		var i insts.Instruction
		Expect(i).To(BeZero())
	})

	It("should have a Decoder type", func() {
		decoder := insts.NewDecoder()
		Expect(decoder).ToNot(BeNil())
	})

	It("should name formats and conditions", func() {
		Expect(insts.FormatBranchExchange.String()).To(Equal("BranchExchange"))
		Expect(insts.FormatThumbLongBranch.String()).To(Equal("ThumbLongBranch"))
		Expect(insts.CondHI.String()).To(Equal("HI"))
		Expect(insts.CondNV.String()).To(Equal("NV"))
	})
})
