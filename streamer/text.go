package streamer

import "fmt"

// C++ text fragments. Body fragments carry their own two-space indent inside
// the procedure; the scope depth prefix is added on append.
const (
	sigWrite     = "size_t write_struct(const %s &write, void *data, size_t position)"
	sigWriteSize = "size_t write_size(const %s &write, size_t offset)"
	sigRead      = "size_t read_struct(%s &read, void *data, size_t position)"
	sigReadSize  = "size_t %s_read_size(void *data, size_t offset)"

	declEnd       = ";\n\n"
	bodyOpen      = "{\n"
	bodyClose     = "}\n\n"
	sizeStart     = "  size_t position = offset;\n"
	returnWritten = "  return position;\n"
	returnSize    = "  return position-offset;\n"

	namespaceOpen  = "namespace %s\n"
	namespaceBrace = "{\n\n"
	namespaceClose = "}\n\n"

	alignDeclare = "  size_t alignmentbytes = %s;  //alignment for: %s\n"
	alignAssign  = "  alignmentbytes = %s;  //alignment for: %s\n"
	alignZero    = "  memset(static_cast<char*>(data)+position,0x0,alignmentbytes);  //setting alignment bytes to 0x0\n"
	alignAdvance = "  position += alignmentbytes;  //moving position indicator\n"
	alignSize    = "  position += %s;  //alignment for: %s\n"

	padZero    = "  memset(static_cast<char*>(data)+position,0x0,%d);  //setting padding bytes to 0x0\n"
	padAdvance = "  position += %d;  //moving position indicator\n"
	padSize    = "  position += %d;  //padding bytes for: %s\n"

	copyWrite = "  memcpy(static_cast<char*>(data)+position,&write.%s(),%d);  //bytes for member: %s\n"
	copyRead  = "  memcpy(&read.%s(),static_cast<char*>(data)+position,%d);  //bytes for member: %s\n"
	copySize  = "  position += %d;  //bytes for member: %s\n"

	instanceWrite     = "  position = write_struct(write.%s(), data, position);\n"
	instanceWriteSize = "  position += write_size(write.%s(), position);\n"
	instanceRead      = "  position = read_struct(read.%s(), data, position);\n"
	instanceReadSize  = "  position += %s(data, position);\n"
)

// alignFormula is the C++ expression for the pad before a field of width w.
func alignFormula(w uint32) string {
	if w == 2 {
		return "position%2"
	}
	return fmt.Sprintf("(%d - position%%%d)%%%d", w, w, w)
}
