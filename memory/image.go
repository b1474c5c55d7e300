package memory

import (
	"encoding/binary"
	"io"
)

// Unmarshal loads a raw image of big-endian 16-bit words into memory,
// starting at address 0. Words past the end of the image are left unchanged.
func (mem *Memory) Unmarshal(file io.Reader) (err error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return
	}

	if len(data)%2 != 0 {
		err = &ErrImage{Word: len(data) / 2, Err: ErrImageOdd}
		return
	}

	if len(data)/2 > MEM_SIZE {
		err = &ErrImage{Word: MEM_SIZE, Err: ErrImageLarge}
		return
	}

	for n := range len(data) / 2 {
		mem[n] = binary.BigEndian.Uint16(data[n*2:])
	}

	return
}

// Marshal writes the first count words of memory as a raw big-endian image.
// A count of zero or less writes the whole store.
func (mem *Memory) Marshal(file io.Writer, count int) (err error) {
	if count <= 0 || count > MEM_SIZE {
		count = MEM_SIZE
	}

	data := make([]byte, count*2)
	for n := range count {
		binary.BigEndian.PutUint16(data[n*2:], mem[n])
	}

	n, err := file.Write(data)
	if err == nil && n != len(data) {
		err = io.ErrShortWrite
	}

	if err != nil {
		err = &ErrImage{Word: n / 2, Err: err}
	}

	return
}
