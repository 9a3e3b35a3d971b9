package cppdecl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectd/projectd/internal/decl"
)

func parseSource(t *testing.T, source string) *decl.File {
	t.Helper()
	parser, err := NewParser()
	require.NoError(t, err)
	t.Cleanup(parser.Close)

	file, err := parser.ParseFile("test.hpp", []byte(source))
	require.NoError(t, err)
	return file
}

func TestParseNamespaceWithComment(t *testing.T) {
	file := parseSource(t, `
/// Math utilities
namespace math {
}
`)
	require.Len(t, file.Namespaces, 1)
	assert.Equal(t, "math", file.Namespaces[0].Name)
	assert.Equal(t, "/// Math utilities", file.Namespaces[0].Comment)
}

func TestParseClassMembers(t *testing.T) {
	file := parseSource(t, `
namespace math {

/// @brief Two dimensional vector
class Vector {
public:
    /// @brief Adds another vector
    /// @param other the vector to add
    Vector add(const Vector &other) const;

    /// the horizontal component
    double x;

    double y; ///< the vertical component

private:
    double cached_length;
};

}
`)
	require.Len(t, file.Namespaces, 1)
	ns := file.Namespaces[0]
	require.Len(t, ns.Classes, 1)

	class := ns.Classes[0]
	assert.Equal(t, "Vector", class.Name)
	assert.Equal(t, "math::Vector", class.FullName)
	assert.Equal(t, "class", class.Key)
	assert.Equal(t, "/// @brief Two dimensional vector", class.Comment)

	require.Len(t, class.Methods, 1)
	method := class.Methods[0]
	assert.Equal(t, "add", method.Name)
	assert.Equal(t, decl.AccessPublic, method.Access)
	assert.True(t, method.Const)
	assert.False(t, method.Static)
	assert.Equal(t, "/// @brief Adds another vector\n/// @param other the vector to add", method.Comment)
	require.Len(t, method.Parameters, 1)
	assert.Equal(t, "other", method.Parameters[0].Name)

	require.Len(t, class.Fields, 3)
	assert.Equal(t, "x", class.Fields[0].Name)
	assert.Equal(t, decl.AccessPublic, class.Fields[0].Access)
	assert.Equal(t, "/// the horizontal component", class.Fields[0].Comment)
	assert.Equal(t, "y", class.Fields[1].Name)
	assert.Equal(t, "///< the vertical component", class.Fields[1].Comment)
	assert.Equal(t, "cached_length", class.Fields[2].Name)
	assert.Equal(t, decl.AccessPrivate, class.Fields[2].Access)
}

func TestParseMethodSpecifiers(t *testing.T) {
	file := parseSource(t, `
namespace app {

class Base {
public:
    virtual ~Base();
    virtual int run(int count) = 0;
    static Base *create();
};

class Impl {
public:
    int run(int count) override;
};

}
`)
	ns := file.Namespaces[0]
	require.Len(t, ns.Classes, 2)

	base := ns.Classes[0]
	require.Len(t, base.Methods, 3)

	dtor := base.Methods[0]
	assert.Equal(t, "~Base", dtor.Name)
	assert.True(t, dtor.Destructor)
	assert.True(t, dtor.Virtual)

	run := base.Methods[1]
	assert.Equal(t, "run", run.Name)
	assert.True(t, run.Virtual)
	assert.True(t, run.PureVirtual)
	assert.Equal(t, "int", run.ReturnType)
	require.Len(t, run.Parameters, 1)
	assert.Equal(t, "count", run.Parameters[0].Name)
	assert.Equal(t, "int", run.Parameters[0].Type)

	create := base.Methods[2]
	assert.True(t, create.Static)
	assert.Equal(t, "Base*", create.ReturnType)

	impl := ns.Classes[1]
	require.Len(t, impl.Methods, 1)
	assert.True(t, impl.Methods[0].Override)
}

func TestParseConstructor(t *testing.T) {
	file := parseSource(t, `
namespace app {
class Widget {
public:
    explicit Widget(int size);
};
}
`)
	class := file.Namespaces[0].Classes[0]
	require.Len(t, class.Methods, 1)
	ctor := class.Methods[0]
	assert.Equal(t, "Widget", ctor.Name)
	assert.True(t, ctor.Constructor)
	assert.True(t, ctor.Explicit)
}

func TestParseBaseClasses(t *testing.T) {
	file := parseSource(t, `
namespace app {
class Derived : public Base, private detail::Hidden {
};
}
`)
	class := file.Namespaces[0].Classes[0]
	assert.Equal(t, []string{"Base", "Hidden"}, class.Bases)
}

func TestParseStructDefaultsToPublic(t *testing.T) {
	file := parseSource(t, `
namespace app {
struct Point {
    int x;
    int y;
};
}
`)
	class := file.Namespaces[0].Classes[0]
	assert.Equal(t, "struct", class.Key)
	require.Len(t, class.Fields, 2)
	assert.Equal(t, decl.AccessPublic, class.Fields[0].Access)
}

func TestParseEnums(t *testing.T) {
	file := parseSource(t, `
namespace app {

/// Supported colors
enum Color {
    Red = 1, ///< warm
    Green,
    Blue
};

class Widget {
public:
    enum Mode {
        On,
        Off
    };
};

}
`)
	ns := file.Namespaces[0]
	require.Len(t, ns.Enums, 1)

	color := ns.Enums[0]
	assert.Equal(t, "Color", color.Name)
	assert.Equal(t, "/// Supported colors", color.Comment)
	require.Len(t, color.Values, 3)
	assert.Equal(t, "Red", color.Values[0].Name)
	assert.Equal(t, "1", color.Values[0].Value)
	assert.Equal(t, "///< warm", color.Values[0].Comment)
	assert.Equal(t, "", color.Values[1].Value)

	require.Len(t, ns.Classes, 1)
	require.Len(t, ns.Classes[0].Enums, 1)
	mode := ns.Classes[0].Enums[0]
	assert.Equal(t, "Mode", mode.Name)
	assert.Equal(t, decl.AccessPublic, mode.Access)
	require.Len(t, mode.Values, 2)
}

func TestBlankLineOrphansComment(t *testing.T) {
	file := parseSource(t, `
namespace app {
/// unrelated comment

class Widget {
};
}
`)
	class := file.Namespaces[0].Classes[0]
	assert.Equal(t, "", class.Comment)
}

func TestMultiLineBlockComment(t *testing.T) {
	file := parseSource(t, `
namespace app {
/**
 * @brief A widget
 */
class Widget {
};
}
`)
	class := file.Namespaces[0].Classes[0]
	assert.Equal(t, "/**\n * @brief A widget\n */", class.Comment)
}

func TestFileScopeClassIgnored(t *testing.T) {
	file := parseSource(t, `
class Orphan {
};
namespace app {
}
`)
	require.Len(t, file.Namespaces, 1)
	assert.Empty(t, file.Namespaces[0].Classes)
}
