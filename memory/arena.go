package memory

const (
	MEM_SIZE  = 4096   // Words of core memory.
	WORD_MASK = 0xFFFF // Mask of a memory word.
	ADDR_MASK = 0x0FFF // Mask of a 12-bit address.
)

const (
	ORIGIN_MP = 0x050 // Default assembly origin, and main processor start.
	ORIGIN_DP = 0x100 // Display processor start after reset.
)
