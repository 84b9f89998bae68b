package insts

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats. The ARM formats come first, followed by the 19 THUMB
// formats. FormatUndefined is shared by both instruction sets.
const (
	FormatUnknown Format = iota

	FormatDataProcessing         // Data processing / PSR transfer
	FormatMultiply               // MUL, MLA
	FormatMultiplyLong           // UMULL, UMLAL, SMULL, SMLAL
	FormatSingleDataSwap         // SWP, SWPB
	FormatBranchExchange         // BX
	FormatHalfwordTransferReg    // LDRH/STRH/LDRSB/LDRSH, register offset
	FormatHalfwordTransferImm    // LDRH/STRH/LDRSB/LDRSH, immediate offset
	FormatSingleDataTransfer     // LDR, STR
	FormatUndefined              // Architecturally undefined
	FormatBlockDataTransfer      // LDM, STM
	FormatBranch                 // B, BL
	FormatCoprocDataTransfer     // LDC, STC
	FormatCoprocDataOperation    // CDP
	FormatCoprocRegisterTransfer // MRC, MCR
	FormatSoftwareInterrupt      // SWI

	FormatThumbMoveShifted       // 1: LSL/LSR/ASR immediate
	FormatThumbAddSub            // 2: ADD/SUB register or 3-bit immediate
	FormatThumbImmediate         // 3: MOV/CMP/ADD/SUB 8-bit immediate
	FormatThumbALU               // 4: ALU operations
	FormatThumbHiRegister        // 5: hi register operations / BX
	FormatThumbPCLoad            // 6: PC-relative load
	FormatThumbLoadStoreReg      // 7: load/store with register offset
	FormatThumbLoadStoreSigned   // 8: load/store sign-extended byte/halfword
	FormatThumbLoadStoreImm      // 9: load/store with immediate offset
	FormatThumbLoadStoreHalf     // 10: load/store halfword
	FormatThumbSPLoadStore       // 11: SP-relative load/store
	FormatThumbLoadAddress       // 12: load address
	FormatThumbAddSP             // 13: add offset to stack pointer
	FormatThumbPushPop           // 14: push/pop registers
	FormatThumbMultiple          // 15: multiple load/store
	FormatThumbCondBranch        // 16: conditional branch
	FormatThumbSoftwareInterrupt // 17: SWI
	FormatThumbBranch            // 18: unconditional branch
	FormatThumbLongBranch        // 19: long branch with link

	numFormats
)

var formatNames = [numFormats]string{
	FormatUnknown:                "Unknown",
	FormatDataProcessing:         "DataProcessing",
	FormatMultiply:               "Multiply",
	FormatMultiplyLong:           "MultiplyLong",
	FormatSingleDataSwap:         "SingleDataSwap",
	FormatBranchExchange:         "BranchExchange",
	FormatHalfwordTransferReg:    "HalfwordTransferReg",
	FormatHalfwordTransferImm:    "HalfwordTransferImm",
	FormatSingleDataTransfer:     "SingleDataTransfer",
	FormatUndefined:              "Undefined",
	FormatBlockDataTransfer:      "BlockDataTransfer",
	FormatBranch:                 "Branch",
	FormatCoprocDataTransfer:     "CoprocDataTransfer",
	FormatCoprocDataOperation:    "CoprocDataOperation",
	FormatCoprocRegisterTransfer: "CoprocRegisterTransfer",
	FormatSoftwareInterrupt:      "SoftwareInterrupt",

	FormatThumbMoveShifted:       "ThumbMoveShifted",
	FormatThumbAddSub:            "ThumbAddSub",
	FormatThumbImmediate:         "ThumbImmediate",
	FormatThumbALU:               "ThumbALU",
	FormatThumbHiRegister:        "ThumbHiRegister",
	FormatThumbPCLoad:            "ThumbPCLoad",
	FormatThumbLoadStoreReg:      "ThumbLoadStoreReg",
	FormatThumbLoadStoreSigned:   "ThumbLoadStoreSigned",
	FormatThumbLoadStoreImm:      "ThumbLoadStoreImm",
	FormatThumbLoadStoreHalf:     "ThumbLoadStoreHalf",
	FormatThumbSPLoadStore:       "ThumbSPLoadStore",
	FormatThumbLoadAddress:       "ThumbLoadAddress",
	FormatThumbAddSP:             "ThumbAddSP",
	FormatThumbPushPop:           "ThumbPushPop",
	FormatThumbMultiple:          "ThumbMultiple",
	FormatThumbCondBranch:        "ThumbCondBranch",
	FormatThumbSoftwareInterrupt: "ThumbSoftwareInterrupt",
	FormatThumbBranch:            "ThumbBranch",
	FormatThumbLongBranch:        "ThumbLongBranch",
}

// String returns the name of the format.
func (f Format) String() string {
	if f >= numFormats {
		return "Format(?)"
	}
	return formatNames[f]
}

// IsThumb reports whether f is one of the THUMB formats.
func (f Format) IsThumb() bool {
	return f >= FormatThumbMoveShifted && f < numFormats
}
