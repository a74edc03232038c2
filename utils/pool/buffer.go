package pool

import "sync"

// copyBufferSize 存储层拷贝文件内容使用的缓冲区大小
const copyBufferSize = 256 * 1024

var copyBuffers = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, copyBufferSize)
		return &buf
	},
}

// GetCopyBuffer 取出拷贝缓冲区，用完后调用 PutCopyBuffer 归还
func GetCopyBuffer() *[]byte {
	return copyBuffers.Get().(*[]byte)
}

// PutCopyBuffer 归还缓冲区，长度被改动过的不再复用
func PutCopyBuffer(buf *[]byte) {
	if buf == nil || len(*buf) != copyBufferSize {
		return
	}
	copyBuffers.Put(buf)
}
